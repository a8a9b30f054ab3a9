package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/transparentpro/transparency-api/internal/config"
	"github.com/transparentpro/transparency-api/internal/model"
	"google.golang.org/genai"
)

// GeminiService implements AIGateway and EmbeddingGenerator against the
// Gemini API. Calls are single-shot with a request timeout; callers decide
// whether to re-issue a failed request.
type GeminiService struct {
	Client         *genai.Client
	Model          string
	RequestTimeout time.Duration
}

func NewGeminiService(ctx context.Context) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()
	if geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiService{
		Client:         client,
		Model:          geminiConfig.Model,
		RequestTimeout: 90 * time.Second,
	}, nil
}

func (s *GeminiService) GenerateQuestions(ctx context.Context, product *model.Product) ([]GeneratedQuestion, error) {
	text, err := s.generate(ctx, buildQuestionPrompt(product))
	if err != nil {
		return nil, &model.AIGenerationError{Err: err}
	}
	questions, err := parseQuestions(text)
	if err != nil {
		return nil, &model.AIGenerationError{Err: err}
	}
	return questions, nil
}

func (s *GeminiService) ScoreProduct(ctx context.Context, product *model.Product, answers []QuestionAnswer) (*Scoring, error) {
	text, err := s.generate(ctx, buildScoringPrompt(product, answers))
	if err != nil {
		return nil, &model.ScoringError{Err: err}
	}
	scoring, err := parseScoring(text)
	if err != nil {
		return nil, &model.ScoringError{Err: err}
	}
	return scoring, nil
}

func (s *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.1)),
	}

	result, err := s.Client.Models.GenerateContent(
		timeoutCtx,
		s.Model,
		genai.Text(prompt),
		genConfig,
	)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	if err := validateGenerateResponse(result); err != nil {
		return "", fmt.Errorf("invalid response: %w", err)
	}
	return result.Text(), nil
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmedText := strings.TrimSpace(text)
	if trimmedText == "" {
		return nil, fmt.Errorf("text for embedding cannot be empty")
	}
	if len(trimmedText) > 10000 {
		trimmedText = trimmedText[:10000]
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(trimmedText, genai.RoleUser)}
	result, err := s.Client.Models.EmbedContent(
		timeoutCtx,
		"gemini-embedding-001",
		content,
		&genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(int32(768))},
	)
	if err != nil {
		return nil, fmt.Errorf("generate embedding failed: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return result.Embeddings[0].Values, nil
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}
