package aiplans

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newStubServer returns a generator backed by a fake completions endpoint that
// always answers with the given content string.
func newStubServer(t *testing.T, content string) *Generator {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return NewGenerator(NewClient("test-key", "test-model", server.URL))
}

func TestGenerateWorkoutPlan(t *testing.T) {
	plan := `{"goal":"strength","level":"beginner","days":[
		{"day":"Monday","focus":"push","exercises":[{"name":"Bench Press","sets":3,"reps":"5"}]}
	],"notes":"rest well"}`
	g := newStubServer(t, plan)

	got, err := g.GenerateWorkoutPlan(context.Background(), "strength", "beginner", 3)
	require.NoError(t, err)
	require.Equal(t, "strength", got.Goal)
	require.Len(t, got.Days, 1)
	require.Equal(t, "Bench Press", got.Days[0].Exercises[0].Name)
}

func TestGenerateWorkoutPlanValidation(t *testing.T) {
	g := NewGenerator(NewClient("k", "m", "http://unused.invalid"))

	_, err := g.GenerateWorkoutPlan(context.Background(), "", "beginner", 3)
	require.ErrorIs(t, err, ErrGenerationFailed)

	_, err = g.GenerateWorkoutPlan(context.Background(), "strength", "beginner", 8)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateWorkoutPlanRejectsEmptyDays(t *testing.T) {
	g := newStubServer(t, `{"goal":"strength","level":"beginner","days":[]}`)
	_, err := g.GenerateWorkoutPlan(context.Background(), "strength", "beginner", 3)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateWorkoutPlanMalformedContent(t *testing.T) {
	g := newStubServer(t, `not json at all`)
	_, err := g.GenerateWorkoutPlan(context.Background(), "strength", "beginner", 3)
	require.ErrorIs(t, err, ErrGenerationFailed)
	require.NotErrorIs(t, err, ErrUpstream)
}

func TestGenerateWorkoutPlanUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	g := NewGenerator(NewClient("k", "m", server.URL))

	_, err := g.GenerateWorkoutPlan(context.Background(), "strength", "beginner", 3)
	require.ErrorIs(t, err, ErrUpstream)
}

func TestGenerateDietPlan(t *testing.T) {
	plan := `{"goal":"cutting","daily_calories":2000,"days":[
		{"day":"Monday","meals":[{"name":"Oatmeal","description":"with berries","calories":400}]}
	]}`
	g := newStubServer(t, plan)

	got, err := g.GenerateDietPlan(context.Background(), "cutting", 2000, "vegetarian")
	require.NoError(t, err)
	require.Equal(t, 2000, got.DailyCalories)
	require.Len(t, got.Days, 1)
}

func TestGenerateDietPlanCalorieBounds(t *testing.T) {
	g := NewGenerator(NewClient("k", "m", "http://unused.invalid"))

	_, err := g.GenerateDietPlan(context.Background(), "cutting", 500, "")
	require.ErrorIs(t, err, ErrGenerationFailed)

	_, err = g.GenerateDietPlan(context.Background(), "cutting", 20000, "")
	require.ErrorIs(t, err, ErrGenerationFailed)
}
