package service

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"github.com/transparentpro/transparency-api/internal/config"
	"github.com/transparentpro/transparency-api/internal/model"
)

// OpenRouterService is the alternative AIGateway backend speaking the
// chat-completions protocol. Selected with AI_PROVIDER=openrouter.
type OpenRouterService struct {
	client  *resty.Client
	apiKey  string
	model   string
	baseURL string
}

func NewOpenRouterService() *OpenRouterService {
	cfg := config.LoadOpenRouterConfig()
	return &OpenRouterService{
		client:  resty.New(),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
	}
}

func (s *OpenRouterService) GenerateQuestions(ctx context.Context, product *model.Product) ([]GeneratedQuestion, error) {
	text, err := s.chat(ctx, "You are an expert in product transparency and sustainability assessment.", buildQuestionPrompt(product))
	if err != nil {
		return nil, &model.AIGenerationError{Err: err}
	}
	questions, err := parseQuestions(text)
	if err != nil {
		return nil, &model.AIGenerationError{Err: err}
	}
	return questions, nil
}

func (s *OpenRouterService) ScoreProduct(ctx context.Context, product *model.Product, answers []QuestionAnswer) (*Scoring, error) {
	text, err := s.chat(ctx, "You are an expert transparency and sustainability assessor.", buildScoringPrompt(product, answers))
	if err != nil {
		return nil, &model.ScoringError{Err: err}
	}
	scoring, err := parseScoring(text)
	if err != nil {
		return nil, &model.ScoringError{Err: err}
	}
	return scoring, nil
}

func (s *OpenRouterService) chat(ctx context.Context, system, user string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model": s.model,
			"messages": []map[string]string{
				{"role": "system", "content": system},
				{"role": "user", "content": user},
			},
		}).
		Post(s.baseURL + "/chat/completions")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter returned status %d", resp.StatusCode())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no response from LLM")
	}
	return text, nil
}
