package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"healthmate-backend/internal/charts"
	"healthmate-backend/internal/models"
	"healthmate-backend/internal/prompts"
	"healthmate-backend/internal/session"
)

// Dispatcher is satisfied by *Gateway.
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt string, image []byte) (string, error)
}

// HealthService runs one feature interaction at a time: validate input,
// build the prompt, dispatch it, and record chat turns.
type HealthService struct {
	gateway  Dispatcher
	sessions session.Store
}

func NewHealthService(gateway Dispatcher, sessions session.Store) *HealthService {
	return &HealthService{gateway: gateway, sessions: sessions}
}

func (s *HealthService) StartSession(ctx context.Context) (models.Session, error) {
	return s.sessions.Create(ctx)
}

func (s *HealthService) Session(ctx context.Context, id uuid.UUID) (models.Session, error) {
	return s.sessions.Get(ctx, id)
}

func (s *HealthService) History(ctx context.Context, sessionID uuid.UUID) ([]models.Turn, error) {
	return s.sessions.Transcript(ctx, sessionID)
}

// Chat answers message within a session and returns the reply with the full
// transcript after it.
func (s *HealthService) Chat(ctx context.Context, sessionID uuid.UUID, message string) (string, []models.Turn, error) {
	pair, err := s.Exchange(ctx, sessionID, message)
	if err != nil {
		return "", nil, err
	}

	turns, err := s.sessions.Transcript(ctx, sessionID)
	if err != nil {
		return "", nil, err
	}
	return pair[1].Text, turns, nil
}

// Exchange answers message and returns exactly the user and assistant turns
// it recorded. Both turns are written in one store call once the model has
// replied, so a failed call leaves the transcript untouched.
func (s *HealthService) Exchange(ctx context.Context, sessionID uuid.UUID, message string) ([]models.Turn, error) {
	if strings.TrimSpace(message) == "" {
		return nil, invalidInput("message", "Message is required")
	}

	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	reply, err := s.dispatch(ctx, models.PromptRequest{
		Feature:    models.FeatureChat,
		TextPrompt: prompts.Chat(message),
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.sessions.AppendExchange(ctx, sessionID, message, reply)
	if err != nil {
		return nil, fmt.Errorf("failed to record chat turns: %w", err)
	}
	return pair, nil
}

func (s *HealthService) AnalyzeImage(ctx context.Context, raw []byte) (string, error) {
	pngImage, err := EncodePNG(raw)
	if err != nil {
		return "", err
	}

	return s.dispatch(ctx, models.PromptRequest{
		Feature:    models.FeatureImageAnalysis,
		TextPrompt: prompts.ImageAnalysis(),
		Image:      pngImage,
	})
}

// CheckSymptoms trims names, drops blanks and repeats, and needs at least
// one symptom left.
func (s *HealthService) CheckSymptoms(ctx context.Context, symptoms []string) (string, error) {
	seen := make(map[string]bool, len(symptoms))
	cleaned := make([]string, 0, len(symptoms))
	for _, sym := range symptoms {
		sym = strings.TrimSpace(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		cleaned = append(cleaned, sym)
	}

	if len(cleaned) == 0 {
		return "", invalidInput("symptoms", "Please select at least one symptom")
	}

	return s.dispatch(ctx, models.PromptRequest{
		Feature:    models.FeatureSymptomChecker,
		TextPrompt: prompts.SymptomChecker(cleaned),
	})
}

func (s *HealthService) GuideMeditation(ctx context.Context, kind string, minutes int) (string, error) {
	m, err := prompts.ParseMeditationType(kind)
	if err != nil {
		return "", invalidInput("type", "type must be mindfulness, stress_relief, or sleep_aid")
	}
	if minutes < prompts.MinMeditationMinutes || minutes > prompts.MaxMeditationMinutes {
		return "", invalidInput("duration_minutes", fmt.Sprintf("duration_minutes must be between %d and %d",
			prompts.MinMeditationMinutes, prompts.MaxMeditationMinutes))
	}

	return s.dispatch(ctx, models.PromptRequest{
		Feature:    models.FeatureMeditation,
		TextPrompt: prompts.Meditation(m, minutes),
	})
}

// PlanNutrition accepts an empty restriction list but not blank entries in it.
func (s *HealthService) PlanNutrition(ctx context.Context, goal string, restrictions []string) (string, error) {
	g, err := prompts.ParseNutritionGoal(goal)
	if err != nil {
		return "", invalidInput("goal", "goal must be weight_loss, muscle_gain, or balanced_diet")
	}

	cleaned := make([]string, 0, len(restrictions))
	for _, r := range restrictions {
		r = strings.TrimSpace(r)
		if r == "" {
			return "", invalidInput("restrictions", "Restrictions must not contain blank entries")
		}
		cleaned = append(cleaned, r)
	}

	return s.dispatch(ctx, models.PromptRequest{
		Feature:    models.FeatureNutrition,
		TextPrompt: prompts.NutritionPlan(g, cleaned),
	})
}

// Chart accepts custom values in 0..100 each; their sum is not checked.
func (s *HealthService) Chart(chartType string, custom []models.ChartPoint) (models.ChartSpec, error) {
	for _, p := range custom {
		if p.Value < 0 || p.Value > 100 || math.IsNaN(p.Value) {
			return models.ChartSpec{}, invalidInput("data",
				fmt.Sprintf("value for %q must be between 0 and 100", p.Category))
		}
	}

	spec, err := charts.Build(charts.ChartType(chartType), custom)
	if errors.Is(err, charts.ErrUnknownChart) {
		return models.ChartSpec{}, invalidInput("type", "type must be bmi_distribution or common_health_issues")
	}
	return spec, err
}

func (s *HealthService) DailyTip() string {
	return prompts.DailyTip(nil)
}

func (s *HealthService) dispatch(ctx context.Context, req models.PromptRequest) (string, error) {
	text, err := s.gateway.Dispatch(ctx, req.TextPrompt, req.Image)
	if err != nil {
		log.Warn().Err(err).Str("feature", string(req.Feature)).Msg("feature request failed")
		return "", err
	}
	return text, nil
}
