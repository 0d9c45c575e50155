package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/scentarena/fragrance-battle-backend/config"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAINotConfigured      = errors.New("AI service is not configured")
	ErrAIServiceUnavailable = errors.New("AI service unavailable")
	ErrInvalidCategoryType  = errors.New("invalid category type")
)

var validSeasons = map[string]bool{
	"spring": true,
	"summer": true,
	"fall":   true,
	"winter": true,
}

// Categorization is the AI's suggestion for a fragrance. It is returned to
// the caller and never written to the catalog without an admin applying it.
type Categorization struct {
	FragranceID uint     `json:"fragrance_id"`
	Seasons     []string `json:"seasons"`
	Occasions   []string `json:"occasions"`
	Moods       []string `json:"moods"`
	Confidence  float64  `json:"confidence"`
}

type AIService interface {
	CategorizeFragrance(ctx context.Context, fragranceID uint) (*Categorization, error)
	SubmitFeedback(userID, fragranceID uint, categoryType model.AICategoryType, aiSuggestion, userCorrection string) (*model.AICategorFeedback, error)
	ApplyCategorization(fragranceID uint, categorization Categorization) (*model.Fragrance, error)
}

type aiService struct {
	client        openai.Client
	model         string
	timeout       time.Duration
	configured    bool
	fragranceRepo repository.FragranceRepository
	feedbackRepo  repository.FeedbackRepository
}

func NewAIService(
	cfg *config.OpenAIConfig,
	fragranceRepo repository.FragranceRepository,
	feedbackRepo repository.FeedbackRepository,
) AIService {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &aiService{
		client:        openai.NewClient(opts...),
		model:         cfg.Model,
		timeout:       cfg.Timeout,
		configured:    cfg.APIKey != "",
		fragranceRepo: fragranceRepo,
		feedbackRepo:  feedbackRepo,
	}
}

func (s *aiService) CategorizeFragrance(ctx context.Context, fragranceID uint) (*Categorization, error) {
	if !s.configured {
		logger.Warn("AI categorization requested without API key", nil)
		return nil, ErrAINotConfigured
	}

	fragrance, err := s.fragranceRepo.FindByID(fragranceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Fragrance not found for categorization", map[string]interface{}{
				"fragrance_id": fragranceID,
			})
			return nil, ErrFragranceNotFound
		}
		return nil, err
	}

	logger.Info("Requesting AI categorization", map[string]interface{}{
		"fragrance_id": fragranceID,
		"name":         fragrance.Name,
		"brand":        fragrance.Brand,
	})

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	startTime := time.Now()
	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(categorizationSystemPrompt),
				},
			}},
			{OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(buildCategorizationPrompt(fragrance)),
				},
			}},
		},
	})
	if err != nil {
		logger.Error("AI categorization request failed", err, map[string]interface{}{
			"fragrance_id": fragranceID,
			"elapsed":      time.Since(startTime).String(),
		})
		return nil, ErrAIServiceUnavailable
	}

	if len(completion.Choices) == 0 {
		logger.Error("AI categorization returned no choices", nil, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		return nil, ErrAIServiceUnavailable
	}

	categorization, err := parseCategorization(completion.Choices[0].Message.Content)
	if err != nil {
		logger.Error("Failed to parse AI categorization", err, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		return nil, ErrAIServiceUnavailable
	}
	categorization.FragranceID = fragranceID

	logger.Info("AI categorization completed", map[string]interface{}{
		"fragrance_id": fragranceID,
		"seasons":      categorization.Seasons,
		"confidence":   categorization.Confidence,
		"elapsed":      time.Since(startTime).String(),
	})

	return categorization, nil
}

const categorizationSystemPrompt = `You are a fragrance expert. Categorize fragrances by season, occasion and mood.
Respond with a single JSON object and nothing else, in this shape:
{"seasons":["spring"],"occasions":["office"],"moods":["fresh"],"confidence":0.85}
Seasons must come from: spring, summer, fall, winter.
Occasions must come from: daily, office, evening, date, sport, formal.
Moods must come from: fresh, sweet, warm, spicy, woody, floral, clean, bold.
Confidence is your overall certainty between 0 and 1.`

func buildCategorizationPrompt(fragrance *model.Fragrance) string {
	var prompt strings.Builder

	fmt.Fprintf(&prompt, "Fragrance: %s by %s\n", fragrance.Name, fragrance.Brand)
	if fragrance.Year > 0 {
		fmt.Fprintf(&prompt, "Released: %d\n", fragrance.Year)
	}
	if fragrance.Concentration != "" {
		fmt.Fprintf(&prompt, "Concentration: %s\n", fragrance.Concentration)
	}
	if len(fragrance.TopNotes) > 0 {
		fmt.Fprintf(&prompt, "Top notes: %s\n", strings.Join(fragrance.TopNotes, ", "))
	}
	if len(fragrance.MiddleNotes) > 0 {
		fmt.Fprintf(&prompt, "Middle notes: %s\n", strings.Join(fragrance.MiddleNotes, ", "))
	}
	if len(fragrance.BaseNotes) > 0 {
		fmt.Fprintf(&prompt, "Base notes: %s\n", strings.Join(fragrance.BaseNotes, ", "))
	}

	return prompt.String()
}

// parseCategorization extracts the JSON object from a model response,
// tolerating markdown code fences around it.
func parseCategorization(content string) (*Categorization, error) {
	content = strings.TrimSpace(content)
	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			content = content[start : end+1]
		}
	}

	var categorization Categorization
	if err := json.Unmarshal([]byte(content), &categorization); err != nil {
		return nil, fmt.Errorf("unmarshal categorization: %w", err)
	}

	categorization.Seasons = normalizeSeasons(categorization.Seasons)
	categorization.Occasions = normalizeTags(categorization.Occasions)
	categorization.Moods = normalizeTags(categorization.Moods)
	if categorization.Confidence < 0 {
		categorization.Confidence = 0
	}
	if categorization.Confidence > 1 {
		categorization.Confidence = 1
	}

	return &categorization, nil
}

func normalizeSeasons(seasons []string) []string {
	var out []string
	for _, season := range seasons {
		season = strings.ToLower(strings.TrimSpace(season))
		if season == "autumn" {
			season = "fall"
		}
		if validSeasons[season] {
			out = append(out, season)
		}
	}
	return out
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func (s *aiService) SubmitFeedback(userID, fragranceID uint, categoryType model.AICategoryType, aiSuggestion, userCorrection string) (*model.AICategorFeedback, error) {
	switch categoryType {
	case model.AICategorySeason, model.AICategoryOccasion, model.AICategoryMood:
	default:
		logger.Warn("Invalid AI feedback category type", map[string]interface{}{
			"category_type": categoryType,
		})
		return nil, ErrInvalidCategoryType
	}

	if _, err := s.fragranceRepo.FindByID(fragranceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFragranceNotFound
		}
		return nil, err
	}

	feedback := &model.AICategorFeedback{
		UserID:         userID,
		FragranceID:    fragranceID,
		CategoryType:   categoryType,
		AISuggestion:   aiSuggestion,
		UserCorrection: userCorrection,
	}

	if err := s.feedbackRepo.Create(feedback); err != nil {
		logger.Error("Failed to record AI feedback", err, map[string]interface{}{
			"user_id":      userID,
			"fragrance_id": fragranceID,
		})
		return nil, err
	}

	logger.Info("AI feedback recorded", map[string]interface{}{
		"user_id":       userID,
		"fragrance_id":  fragranceID,
		"category_type": categoryType,
	})

	return feedback, nil
}

func (s *aiService) ApplyCategorization(fragranceID uint, categorization Categorization) (*model.Fragrance, error) {
	logger.Info("Applying AI categorization", map[string]interface{}{
		"fragrance_id": fragranceID,
		"confidence":   categorization.Confidence,
	})

	fragrance, err := s.fragranceRepo.FindByID(fragranceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFragranceNotFound
		}
		return nil, err
	}

	fragrance.AISeasons = normalizeSeasons(categorization.Seasons)
	fragrance.AIOccasions = normalizeTags(categorization.Occasions)
	fragrance.AIMoods = normalizeTags(categorization.Moods)
	fragrance.AIConfidence = categorization.Confidence

	if err := s.fragranceRepo.Update(fragrance); err != nil {
		logger.Error("Failed to apply AI categorization", err, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		return nil, err
	}

	logger.Info("AI categorization applied", map[string]interface{}{
		"fragrance_id": fragranceID,
	})

	return fragrance, nil
}
