package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/transparentpro/transparency-api/internal/model"
)

// GeneratedQuestion is one item of a question-generation batch before it is
// persisted as a model.Question.
type GeneratedQuestion struct {
	QuestionText string `json:"questionText"`
	Category     string `json:"category"`
	Importance   string `json:"importance"`
	OrderIndex   int    `json:"orderIndex"`
}

// QuestionAnswer is one question/answer pair fed into the scoring prompt.
type QuestionAnswer struct {
	QuestionText string
	Answer       string
	Category     string
	Importance   string
}

// Scoring is the parsed result of a scoring call. Scores are already clamped
// to [0,100]; the slices are never nil.
type Scoring struct {
	OverallScore        float64  `json:"overallScore"`
	SustainabilityScore float64  `json:"sustainabilityScore"`
	QualityScore        float64  `json:"qualityScore"`
	TransparencyScore   float64  `json:"transparencyScore"`
	Insights            []string `json:"insights"`
	Recommendations     []string `json:"recommendations"`
}

// AIGateway is the boundary to the external text-generation service. Both
// operations are single-shot; retry policy, if any, belongs to the caller.
// ScoreProduct is not deterministic across calls.
type AIGateway interface {
	GenerateQuestions(ctx context.Context, product *model.Product) ([]GeneratedQuestion, error)
	ScoreProduct(ctx context.Context, product *model.Product, answers []QuestionAnswer) (*Scoring, error)
}

// EmbeddingGenerator produces a vector for similarity search. Optional: the
// orchestrator degrades gracefully without one.
type EmbeddingGenerator interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// stripCodeFence removes an optional leading/trailing markdown fence, with or
// without a language tag, so fenced LLM output parses like bare JSON.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func buildQuestionPrompt(p *model.Product) string {
	return fmt.Sprintf(`You are an expert in product transparency and sustainability assessment. Based on the following product information, generate 5-8 specific, detailed questions that would help assess the product's transparency, sustainability, and quality. The questions should be tailored to the product category and materials used.

Product Information:
- Name: %s
- Category: %s
- Brand: %s
- Description: %s
- Materials: %s

For each question, determine:
1. The question text (should be specific and actionable)
2. Category (sustainability, quality, or transparency)
3. Importance level (high, medium, or low)
4. Order index (1-8, with most important questions first)

Return the response as a valid JSON object with this exact structure:
{
  "questions": [
    {
      "questionText": "string",
      "category": "sustainability|quality|transparency",
      "importance": "high|medium|low",
      "orderIndex": number
    }
  ]
}`, p.Name, p.Category, orNotSpecified(p.Brand), orNotSpecified(p.Description), orNotSpecified(p.Materials))
}

func buildScoringPrompt(p *model.Product, answers []QuestionAnswer) string {
	productJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		productJSON = []byte(p.Name)
	}

	var qa strings.Builder
	for _, a := range answers {
		answer := a.Answer
		if strings.TrimSpace(answer) == "" {
			answer = "No answer provided"
		}
		fmt.Fprintf(&qa, "\nQuestion (%s, %s): %s\nAnswer: %s\n", a.Category, a.Importance, a.QuestionText, answer)
	}

	return fmt.Sprintf(`You are an expert transparency and sustainability assessor. Analyze the following product and its transparency assessment responses to calculate a comprehensive transparency score.

Product Information:
%s

Questions and Answers:
%s

Calculate scores (0-100) for:
1. Overall transparency score
2. Sustainability score
3. Quality score
4. Transparency score

Also provide:
5. Key insights (3-5 bullet points about strengths and areas for improvement)
6. Actionable recommendations (3-5 specific suggestions)

Provide accurate, fair scoring based on the completeness and quality of responses. Be constructive in insights and recommendations.

Return as a valid JSON object with this exact structure:
{
  "overallScore": number,
  "sustainabilityScore": number,
  "qualityScore": number,
  "transparencyScore": number,
  "insights": ["string"],
  "recommendations": ["string"]
}`, productJSON, qa.String())
}

// parseQuestions turns raw LLM output into a question batch. A missing
// "questions" field is an empty batch, not an error; invalid JSON is.
func parseQuestions(text string) ([]GeneratedQuestion, error) {
	jsonText := stripCodeFence(text)
	if !gjson.Valid(jsonText) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	field := gjson.Get(jsonText, "questions")
	questions := []GeneratedQuestion{}
	if !field.Exists() {
		return questions, nil
	}
	for _, item := range field.Array() {
		questions = append(questions, GeneratedQuestion{
			QuestionText: item.Get("questionText").String(),
			Category:     item.Get("category").String(),
			Importance:   item.Get("importance").String(),
			OrderIndex:   int(item.Get("orderIndex").Int()),
		})
	}
	return questions, nil
}

// parseScoring extracts the four scores and the two text lists. Missing
// scores default to 0, out-of-range values are clamped, missing lists are
// empty; only structurally invalid JSON fails.
func parseScoring(text string) (*Scoring, error) {
	jsonText := stripCodeFence(text)
	if !gjson.Valid(jsonText) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	return &Scoring{
		OverallScore:        model.ClampScore(gjson.Get(jsonText, "overallScore").Float()),
		SustainabilityScore: model.ClampScore(gjson.Get(jsonText, "sustainabilityScore").Float()),
		QualityScore:        model.ClampScore(gjson.Get(jsonText, "qualityScore").Float()),
		TransparencyScore:   model.ClampScore(gjson.Get(jsonText, "transparencyScore").Float()),
		Insights:            stringList(gjson.Get(jsonText, "insights")),
		Recommendations:     stringList(gjson.Get(jsonText, "recommendations")),
	}, nil
}

func stringList(result gjson.Result) []string {
	out := []string{}
	for _, item := range result.Array() {
		out = append(out, item.String())
	}
	return out
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not specified"
	}
	return s
}
