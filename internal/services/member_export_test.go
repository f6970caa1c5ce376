package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"gnexgym_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestImportMembersCSVPartialSuccess(t *testing.T) {
	// Row order drives the transaction order: commit, no tx (parse failure),
	// rollback (duplicate gym number), commit.
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := newFakeMemberRepo()
	svc := NewMemberService(repo, newFakePlanRepo(), db).(*memberService)
	svc.now = func() time.Time { return testToday }

	input := strings.Join([]string{
		"Name,Gym Number,Status,Membership Type,Details,Has Coach,Coach Name,Training Type,Phone,Due Date,Total Sessions,Sessions Used",
		"Aruzhan S.,G-0100,Active,Monthly,,false,,,+7 701 111 2233,2025-06-01,10,3",
		"Bad Date,,,,,,,,,not-a-date,,",
		"Duplicate,G-0100,,,,,,,,,,",
		"No Number,,,,,,,,,2025-05-01,,",
	}, "\n")

	result, err := svc.ImportMembersCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Len(t, result.Errors, 2)
	require.Equal(t, 3, result.Errors[0].Row)
	require.Equal(t, 4, result.Errors[1].Row)

	m, err := repo.GetByGymNumber("G-0100")
	require.NoError(t, err)
	require.Equal(t, "Aruzhan S.", m.Name)
	require.Equal(t, "2025-06-01", *m.DueDate)
	require.Equal(t, 10, m.TotalSessions)

	// The row without a gym number got one assigned.
	assigned, err := repo.GetByGymNumber("G-0001")
	require.NoError(t, err)
	require.Equal(t, "No Number", assigned.Name)

	entries, err := repo.GetHistory(assigned.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "Imported from CSV", entries[0].Title)
}

func TestImportMembersCSVRequiresCoreColumns(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 0)

	// No header at all that matches the core set.
	_, err := svc.ImportMembersCSV(strings.NewReader("phone,email\n123,a@b.c\n"))
	require.ErrorIs(t, err, ErrValidation)

	// A name column alone is not enough; the refusal names what is missing
	// and no rows are imported.
	_, err = svc.ImportMembersCSV(strings.NewReader("name\nAruzhan S.\n"))
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "gymnumber")
	require.Contains(t, err.Error(), "membershiptype")
	require.Contains(t, err.Error(), "hascoach")
	members, _, err := repo.List(models.MemberFilters{})
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestImportMembersCSVRejectsInconsistentSessions(t *testing.T) {
	svc, _, _ := newMemberServiceForTest(t, 0)
	input := "name,gym_number,status,membership_type,details,has_coach,coach_name,training_type,total_sessions,sessions_used\n" +
		"Aida,,,,,,,,5,9\n"

	result, err := svc.ImportMembersCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 0, result.Imported)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0].Reason, "sessionsused")
}

func TestExportMembersCSVRoundTrip(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 0)
	due := "2025-06-01"
	member := &models.Member{
		GymNumber: "G-0001", Name: "Erlan", Status: models.StatusActive,
		MembershipType: "Monthly", DueDate: &due, HasCoach: true, TotalSessions: 8,
	}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportMembersCSV(&buf, models.MemberFilters{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, exportHeader, rows[0])
	require.Equal(t, "G-0001", rows[1][0])
	require.Equal(t, "Erlan", rows[1][1])
	require.Equal(t, "2025-06-01", rows[1][7])
	require.Equal(t, "true", rows[1][8])
}

func TestExportMembersExcelWritesSheet(t *testing.T) {
	svc, repo, _ := newMemberServiceForTest(t, 0)
	member := &models.Member{GymNumber: "G-0001", Name: "Erlan", Status: models.StatusActive}
	_, err := repo.Create(nil, member)
	require.NoError(t, err)

	file, err := svc.ExportMembersExcel(models.MemberFilters{})
	require.NoError(t, err)
	require.Equal(t, "gym_number", file.GetCellValue("Members", "A1"))
	require.Equal(t, "G-0001", file.GetCellValue("Members", "A2"))
	require.Equal(t, "Erlan", file.GetCellValue("Members", "B2"))
}
