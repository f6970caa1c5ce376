package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newClassServiceForTest(t *testing.T, txCount int) (ClassService, *fakeClassRepo) {
	t.Helper()
	repo := newFakeClassRepo()
	return NewClassService(repo, newTxDB(t, txCount)), repo
}

func TestMarkAttendanceReplacesRoster(t *testing.T) {
	svc, _ := newClassServiceForTest(t, 0)
	coach := "Coach Dana"
	c, err := svc.Create(CreateClassRequest{Name: "Morning Yoga", CoachName: &coach})
	require.NoError(t, err)

	a, err := svc.MarkAttendance(c.ID, MarkAttendanceRequest{
		Date:             "2025-03-15",
		PresentMemberIDs: []string{"G-0001", "G-0002"},
	})
	require.NoError(t, err)
	require.Len(t, a.PresentMemberIDs, 2)

	// Saving again for the same date replaces the roster, not appends.
	a, err = svc.MarkAttendance(c.ID, MarkAttendanceRequest{
		Date:             "2025-03-15",
		PresentMemberIDs: []string{"G-0003"},
	})
	require.NoError(t, err)

	stored, err := svc.AttendanceByDate(c.ID, "2025-03-15")
	require.NoError(t, err)
	require.Equal(t, []string{"G-0003"}, stored.PresentMemberIDs)
}

func TestMarkAttendanceNilRosterStoresEmpty(t *testing.T) {
	svc, _ := newClassServiceForTest(t, 0)
	c, err := svc.Create(CreateClassRequest{Name: "Spin"})
	require.NoError(t, err)

	a, err := svc.MarkAttendance(c.ID, MarkAttendanceRequest{Date: "2025-03-15"})
	require.NoError(t, err)
	require.NotNil(t, a.PresentMemberIDs)
	require.Empty(t, a.PresentMemberIDs)
}

func TestMarkAttendanceRejectsBadDate(t *testing.T) {
	svc, _ := newClassServiceForTest(t, 0)
	c, err := svc.Create(CreateClassRequest{Name: "Spin"})
	require.NoError(t, err)

	// 30/02 is impossible in any of the accepted layouts.
	_, err = svc.MarkAttendance(c.ID, MarkAttendanceRequest{Date: "30/02/2025"})
	require.ErrorIs(t, err, ErrDateFormat)
}

func TestAttendanceByDateUnsavedReadsEmpty(t *testing.T) {
	svc, _ := newClassServiceForTest(t, 0)
	c, err := svc.Create(CreateClassRequest{Name: "Spin"})
	require.NoError(t, err)

	a, err := svc.AttendanceByDate(c.ID, "2025-03-20")
	require.NoError(t, err)
	require.Empty(t, a.PresentMemberIDs)
}

func TestDeleteClassRemovesAttendance(t *testing.T) {
	svc, repo := newClassServiceForTest(t, 1)
	c, err := svc.Create(CreateClassRequest{Name: "Spin"})
	require.NoError(t, err)
	_, err = svc.MarkAttendance(c.ID, MarkAttendanceRequest{Date: "2025-03-15", PresentMemberIDs: []string{"G-0001"}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(c.ID))
	require.Empty(t, repo.attendance[c.ID])

	// Deleting a class that is already gone rolls the transaction back.
	again := NewClassService(repo, newRollbackDB(t, 1))
	require.ErrorIs(t, again.Delete(c.ID), ErrClassNotFound)
}
