package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTaskLifecycle(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo(), newTxDB(t, 0))

	_, err := svc.Create(CreateTaskRequest{Title: "  "})
	require.ErrorIs(t, err, ErrValidation)

	task, err := svc.Create(CreateTaskRequest{Title: "Order new towels"})
	require.NoError(t, err)
	require.False(t, task.Done)

	done := true
	task, err = svc.Update(task.ID, UpdateTaskRequest{Done: &done})
	require.NoError(t, err)
	require.True(t, task.Done)

	_, err = svc.Update(99, UpdateTaskRequest{Done: &done})
	require.ErrorIs(t, err, ErrTaskNotFound)

	require.NoError(t, svc.Delete(task.ID))
	require.ErrorIs(t, svc.Delete(task.ID), ErrTaskNotFound)
}

func TestFreePassCode(t *testing.T) {
	svc := NewSettingsService(newFakeSettingsRepo(), newTxDB(t, 0))

	// Unset code reads as empty and never verifies.
	code, err := svc.FreePassCode()
	require.NoError(t, err)
	require.Empty(t, code)

	ok, err := svc.VerifyFreePassCode("")
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, svc.SetFreePassCode("  "), ErrValidation)
	require.NoError(t, svc.SetFreePassCode("GNEX2025"))

	ok, err = svc.VerifyFreePassCode(" GNEX2025 ")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.VerifyFreePassCode("wrong")
	require.NoError(t, err)
	require.False(t, ok)
}
