package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"morningProofAPI/internal/habit"
	"morningProofAPI/internal/verification"
)

// VerificationService asks a vision model whether a submitted photo actually
// shows the claimed habit. The model is forced into JSON output and the
// reply is parsed into a structured verdict.
type VerificationService struct {
	model llms.Model
}

func NewVerificationService(apiKey, baseURL, modelName string) (*VerificationService, error) {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
		openai.WithResponseFormat(&openai.ResponseFormat{
			Type: "json_object",
		}),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification client: %w", err)
	}

	return &VerificationService{model: model}, nil
}

const verificationSystemPrompt = `You judge photos submitted as proof of a completed morning habit.
Reply with a single JSON object, nothing else:
{"valid": bool, "score": int 0-100, "feedback": "one short sentence"}
"valid" is true only if the photo plausibly shows the claimed activity.
"score" grades how convincing and how well-executed the proof is.
Screenshots, stock photos and unrelated images are invalid with score 0.`

func verificationTask(t habit.HabitType) string {
	switch t {
	case habit.HabitMadeBed:
		return "a neatly made bed"
	case habit.HabitWorkout:
		return "a completed workout (gym, run, home exercise)"
	case habit.HabitColdShower:
		return "a cold shower being taken"
	default:
		return string(t)
	}
}

// VerifyPhoto sends the photo to the model and parses its verdict. The
// caller decides what a failure means; this method only reports it.
func (s *VerificationService) VerifyPhoto(ctx context.Context, habitType habit.HabitType, photoURL string) (*verification.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(verificationSystemPrompt)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf("The user claims this photo shows: %s.", verificationTask(habitType))),
				llms.ImageURLPart(photoURL),
			},
		},
	}

	resp, err := s.model.GenerateContent(ctx, messages, llms.WithTemperature(0))
	if err != nil {
		return nil, fmt.Errorf("photo verification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("photo verification returned no choices")
	}

	return parseVerdict(resp.Choices[0].Content)
}

// parseVerdict decodes the model's JSON reply, tolerating code fences some
// models wrap around it, and clamps the score into range.
func parseVerdict(raw string) (*verification.Result, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var res verification.Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, fmt.Errorf("failed to parse verification verdict: %w", err)
	}

	if res.Score < 0 {
		res.Score = 0
	}
	if res.Score > 100 {
		res.Score = 100
	}
	if !res.Valid && res.Score > 0 {
		res.Score = 0
	}

	return &res, nil
}
