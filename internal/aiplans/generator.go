package aiplans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrGenerationFailed = errors.New("failed to generate plan")

// WorkoutDay is one training day in a generated weekly program.
type WorkoutDay struct {
	Day       string `json:"day"`
	Focus     string `json:"focus"`
	Exercises []struct {
		Name string `json:"name"`
		Sets int    `json:"sets"`
		Reps string `json:"reps"`
	} `json:"exercises"`
}

// WorkoutPlan is a week of training produced by the model.
type WorkoutPlan struct {
	Goal  string       `json:"goal"`
	Level string       `json:"level"`
	Days  []WorkoutDay `json:"days"`
	Notes string       `json:"notes,omitempty"`
}

// DietDay is one day of meals in a generated weekly diet.
type DietDay struct {
	Day   string `json:"day"`
	Meals []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Calories    int    `json:"calories"`
	} `json:"meals"`
}

// DietPlan is a week of meals produced by the model.
type DietPlan struct {
	Goal          string    `json:"goal"`
	DailyCalories int       `json:"daily_calories"`
	Days          []DietDay `json:"days"`
	Notes         string    `json:"notes,omitempty"`
}

// Generator produces workout and diet plans for coaches to hand out.
type Generator struct {
	client *Client
}

// NewGenerator creates a Generator on top of an API client.
func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

const workoutSystemPrompt = `You are a certified gym coach writing weekly training programs.
Respond with a single JSON object matching this shape:
{"goal": string, "level": string, "days": [{"day": string, "focus": string,
"exercises": [{"name": string, "sets": number, "reps": string}]}], "notes": string}`

const dietSystemPrompt = `You are a sports nutritionist writing weekly meal plans.
Respond with a single JSON object matching this shape:
{"goal": string, "daily_calories": number, "days": [{"day": string,
"meals": [{"name": string, "description": string, "calories": number}]}], "notes": string}`

// GenerateWorkoutPlan asks the model for a weekly program tailored to the
// member's goal, experience level, and available training days.
func (g *Generator) GenerateWorkoutPlan(ctx context.Context, goal, level string, daysPerWeek int) (*WorkoutPlan, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, fmt.Errorf("%w: goal is required", ErrGenerationFailed)
	}
	if daysPerWeek < 1 || daysPerWeek > 7 {
		return nil, fmt.Errorf("%w: days per week must be between 1 and 7", ErrGenerationFailed)
	}
	if level == "" {
		level = "beginner"
	}
	user := fmt.Sprintf("Goal: %s. Experience level: %s. Training days per week: %d.", goal, level, daysPerWeek)

	content, err := g.client.completeJSON(ctx, workoutSystemPrompt, user)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	var plan WorkoutPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("%w: malformed plan document: %v", ErrGenerationFailed, err)
	}
	if len(plan.Days) == 0 {
		return nil, fmt.Errorf("%w: plan has no training days", ErrGenerationFailed)
	}
	return &plan, nil
}

// GenerateDietPlan asks the model for a weekly meal plan around a daily
// calorie target and dietary preference.
func (g *Generator) GenerateDietPlan(ctx context.Context, goal string, dailyCalories int, preference string) (*DietPlan, error) {
	if strings.TrimSpace(goal) == "" {
		return nil, fmt.Errorf("%w: goal is required", ErrGenerationFailed)
	}
	if dailyCalories < 800 || dailyCalories > 10000 {
		return nil, fmt.Errorf("%w: daily calorie target out of range", ErrGenerationFailed)
	}
	user := fmt.Sprintf("Goal: %s. Daily calorie target: %d.", goal, dailyCalories)
	if strings.TrimSpace(preference) != "" {
		user += fmt.Sprintf(" Dietary preference: %s.", preference)
	}

	content, err := g.client.completeJSON(ctx, dietSystemPrompt, user)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	var plan DietPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("%w: malformed plan document: %v", ErrGenerationFailed, err)
	}
	if len(plan.Days) == 0 {
		return nil, fmt.Errorf("%w: plan has no days", ErrGenerationFailed)
	}
	return &plan, nil
}
