package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/transparentpro/transparency-api/internal/dto"
	"github.com/transparentpro/transparency-api/internal/model"
	"github.com/transparentpro/transparency-api/internal/repository"
	"github.com/transparentpro/transparency-api/internal/service"
)

// AssessmentUsecase drives the four-step assessment: basic info, details,
// AI questions, review/report. All workflow state lives on the product row;
// the usecase itself holds nothing across requests.
type AssessmentUsecase struct {
	products  repository.ProductRepositoryInterface
	questions repository.QuestionRepositoryInterface
	reports   repository.ReportRepositoryInterface
	users     repository.UserRepositoryInterface
	ai        service.AIGateway
	renderer  service.ReportRenderer
	embedder  service.EmbeddingGenerator

	ownerID uuid.UUID
}

func NewAssessmentUsecase(
	products repository.ProductRepositoryInterface,
	questions repository.QuestionRepositoryInterface,
	reports repository.ReportRepositoryInterface,
	users repository.UserRepositoryInterface,
	ai service.AIGateway,
	renderer service.ReportRenderer,
	embedder service.EmbeddingGenerator,
) *AssessmentUsecase {
	return &AssessmentUsecase{
		products:  products,
		questions: questions,
		reports:   reports,
		users:     users,
		ai:        ai,
		renderer:  renderer,
		embedder:  embedder,
	}
}

// Bootstrap ensures the demo user exists and pins it as the product owner.
// Must run once before any workflow operation.
func (uc *AssessmentUsecase) Bootstrap(ctx context.Context) error {
	user, err := uc.users.FindOrCreateByUsername("demo_user", "demo@example.com")
	if err != nil {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	uc.ownerID = user.ID
	return nil
}

// CreateProduct validates basic info and creates the product at step 2:
// creation itself is the step-1 exit gate.
func (uc *AssessmentUsecase) CreateProduct(ctx context.Context, in dto.ProductInput) (*model.Product, error) {
	if err := model.ValidateProductInput(in.Name, in.Category); err != nil {
		return nil, err
	}

	product := &model.Product{
		UserID:               uc.ownerID,
		Name:                 in.Name,
		Category:             in.Category,
		Brand:                in.Brand,
		Description:          in.Description,
		Weight:               in.Weight,
		Dimensions:           in.Dimensions,
		Materials:            in.Materials,
		ManufacturingCountry: in.ManufacturingCountry,
		ManufacturingDate:    in.ManufacturingDate,
		Certifications:       certificationsOrEmpty(in.Certifications),
		ImageURL:             in.ImageURL,
		Status:               model.ProductStatusDraft,
		CurrentStep:          model.StepDetails,
	}
	if err := uc.products.Create(product); err != nil {
		return nil, err
	}
	uc.refreshEmbedding(ctx, product)
	return product, nil
}

func (uc *AssessmentUsecase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return uc.products.FindByID(id)
}

func (uc *AssessmentUsecase) ListProducts(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	return uc.products.ListByUser(uc.ownerID, page, pageSize)
}

// UpdateProduct applies a partial update. ID and owner never change; name and
// category, when present, must still pass basic-info validation.
func (uc *AssessmentUsecase) UpdateProduct(ctx context.Context, id string, in dto.ProductUpdate) (*model.Product, error) {
	product, err := uc.products.FindByID(id)
	if err != nil {
		return nil, err
	}

	name := product.Name
	category := product.Category
	if in.Name != nil {
		name = *in.Name
	}
	if in.Category != nil {
		category = *in.Category
	}
	if err := model.ValidateProductInput(name, category); err != nil {
		return nil, err
	}

	product.Name = name
	product.Category = category
	applyOptional(&product.Brand, in.Brand)
	applyOptional(&product.Description, in.Description)
	applyOptional(&product.Weight, in.Weight)
	applyOptional(&product.Dimensions, in.Dimensions)
	applyOptional(&product.Materials, in.Materials)
	applyOptional(&product.ManufacturingCountry, in.ManufacturingCountry)
	applyOptional(&product.ManufacturingDate, in.ManufacturingDate)
	applyOptional(&product.ImageURL, in.ImageURL)
	if in.Certifications != nil {
		product.Certifications = certificationsOrEmpty(*in.Certifications)
	}

	if err := uc.products.Save(product); err != nil {
		return nil, err
	}
	if in.Name != nil || in.Category != nil || in.Description != nil || in.Materials != nil {
		uc.refreshEmbedding(ctx, product)
	}
	return product, nil
}

// Advance runs the exit gate of the product's current step and moves forward
// when it passes. Step 4 is terminal: advancing from it re-runs scoring and
// stays put.
func (uc *AssessmentUsecase) Advance(ctx context.Context, id string, in dto.ProductInput) (*model.Product, error) {
	product, err := uc.products.FindByID(id)
	if err != nil {
		return nil, err
	}

	switch product.CurrentStep {
	case model.StepBasicInfo:
		if err := model.ValidateProductInput(in.Name, in.Category); err != nil {
			return nil, err
		}
		product.Name = in.Name
		product.Category = in.Category
		product.Brand = in.Brand
		product.Description = in.Description
		product.CurrentStep = model.StepDetails
		if err := uc.products.Save(product); err != nil {
			return nil, err
		}
		uc.refreshEmbedding(ctx, product)

	case model.StepDetails:
		product.Weight = in.Weight
		product.Dimensions = in.Dimensions
		product.Materials = in.Materials
		product.ManufacturingCountry = in.ManufacturingCountry
		product.ManufacturingDate = in.ManufacturingDate
		product.Certifications = certificationsOrEmpty(in.Certifications)
		product.Status = model.ProductStatusInProgress
		product.CurrentStep = model.StepQuestions
		if err := uc.products.Save(product); err != nil {
			return nil, err
		}
		// First entry into step 3 seeds the question list. The gate itself
		// does not depend on generation succeeding; questions can also be
		// requested explicitly later.
		count, err := uc.questions.CountByProduct(id)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			if _, err := uc.GenerateQuestions(ctx, id); err != nil {
				log.Printf("question generation failed for product %s: %v", id, err)
			}
		}

	case model.StepQuestions:
		questions, err := uc.questions.ListByProduct(id)
		if err != nil {
			return nil, err
		}
		answered := 0
		for _, q := range questions {
			if q.Answered() {
				answered++
			}
		}
		if answered == 0 {
			return nil, &model.IncompleteAssessmentError{}
		}
		product.CurrentStep = model.StepReview
		if err := uc.products.Save(product); err != nil {
			return nil, err
		}

	case model.StepReview:
		if _, err := uc.GenerateReport(ctx, id); err != nil {
			return nil, err
		}
		return uc.products.FindByID(id)
	}

	return product, nil
}

// Retreat steps back one step, floor 1. Never gated.
func (uc *AssessmentUsecase) Retreat(ctx context.Context, id string) (*model.Product, error) {
	product, err := uc.products.FindByID(id)
	if err != nil {
		return nil, err
	}
	if product.CurrentStep > model.StepBasicInfo {
		product.CurrentStep--
		if err := uc.products.Save(product); err != nil {
			return nil, err
		}
	}
	return product, nil
}

// GenerateQuestions asks the AI gateway for a fresh batch and appends it.
// Repeated calls append rather than replace.
func (uc *AssessmentUsecase) GenerateQuestions(ctx context.Context, productID string) ([]model.Question, error) {
	product, err := uc.products.FindByID(productID)
	if err != nil {
		return nil, err
	}

	generated, err := uc.ai.GenerateQuestions(ctx, product)
	if err != nil {
		return nil, err
	}

	saved := []model.Question{}
	for _, g := range generated {
		question := model.Question{
			ProductID:    product.ID,
			QuestionText: g.QuestionText,
			Category:     g.Category,
			Importance:   g.Importance,
			OrderIndex:   g.OrderIndex,
			AIGenerated:  true,
		}
		if err := uc.questions.Create(&question); err != nil {
			return nil, err
		}
		saved = append(saved, question)
	}
	return saved, nil
}

func (uc *AssessmentUsecase) ListQuestions(ctx context.Context, productID string) ([]model.Question, error) {
	if _, err := uc.products.FindByID(productID); err != nil {
		return nil, err
	}
	return uc.questions.ListByProduct(productID)
}

// SetAnswer updates a single question's answer. Idempotent on equal value and
// independent of the workflow step.
func (uc *AssessmentUsecase) SetAnswer(ctx context.Context, questionID, answer string) (*model.Question, error) {
	question, err := uc.questions.FindByID(questionID)
	if err != nil {
		return nil, err
	}
	if question.Answer == answer {
		return question, nil
	}
	question.Answer = answer
	if err := uc.questions.Save(question); err != nil {
		return nil, err
	}
	return question, nil
}

// GenerateReport scores the product over all its questions and upserts the
// current report. On scoring failure nothing is written and any prior report
// keeps its status.
func (uc *AssessmentUsecase) GenerateReport(ctx context.Context, productID string) (*model.Report, error) {
	product, err := uc.products.FindByID(productID)
	if err != nil {
		return nil, err
	}
	questions, err := uc.questions.ListByProduct(productID)
	if err != nil {
		return nil, err
	}

	answers := make([]service.QuestionAnswer, 0, len(questions))
	for _, q := range questions {
		answers = append(answers, service.QuestionAnswer{
			QuestionText: q.QuestionText,
			Answer:       q.Answer,
			Category:     q.Category,
			Importance:   q.Importance,
		})
	}

	scoring, err := uc.ai.ScoreProduct(ctx, product, answers)
	if err != nil {
		return nil, err
	}

	report, err := uc.reports.LatestByProduct(productID)
	if err != nil {
		var notFound *model.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		report = &model.Report{ProductID: product.ID}
	}

	report.OverallScore = scoring.OverallScore
	report.SustainabilityScore = scoring.SustainabilityScore
	report.QualityScore = scoring.QualityScore
	report.TransparencyScore = scoring.TransparencyScore
	report.Insights = scoring.Insights
	report.Recommendations = scoring.Recommendations
	report.PdfURL = fmt.Sprintf("/api/products/%s/report/pdf", product.ID)
	report.Status = model.ReportStatusCompleted

	if report.ID == uuid.Nil {
		err = uc.reports.Create(report)
	} else {
		err = uc.reports.Save(report)
	}
	if err != nil {
		return nil, err
	}

	product.Status = model.ProductStatusCompleted
	if err := uc.products.Save(product); err != nil {
		return nil, err
	}
	return report, nil
}

func (uc *AssessmentUsecase) GetReport(ctx context.Context, productID string) (*model.Report, error) {
	if _, err := uc.products.FindByID(productID); err != nil {
		return nil, err
	}
	return uc.reports.LatestByProduct(productID)
}

// RenderReportPDF loads the three entities and renders them to PDF bytes plus
// a download filename. Persisted state is never touched.
func (uc *AssessmentUsecase) RenderReportPDF(ctx context.Context, productID string) ([]byte, string, error) {
	product, err := uc.products.FindByID(productID)
	if err != nil {
		return nil, "", err
	}
	report, err := uc.reports.LatestByProduct(productID)
	if err != nil {
		return nil, "", err
	}
	questions, err := uc.questions.ListByProduct(productID)
	if err != nil {
		return nil, "", err
	}

	pdf, err := uc.renderer.RenderReport(ctx, product, questions, report)
	if err != nil {
		return nil, "", err
	}
	return pdf, service.ReportFilename(product.Name), nil
}

// SimilarProducts ranks other assessed products by embedding distance.
func (uc *AssessmentUsecase) SimilarProducts(ctx context.Context, productID string, limit int) ([]model.Product, error) {
	product, err := uc.products.FindByID(productID)
	if err != nil {
		return nil, err
	}
	if product.Embedding == nil {
		if uc.embedder == nil {
			return nil, fmt.Errorf("similarity search unavailable: no embedding provider configured")
		}
		values, err := uc.embedder.GenerateEmbedding(ctx, product.EmbeddingText())
		if err != nil {
			return nil, err
		}
		vec := pgvector.NewVector(values)
		product.Embedding = &vec
		if err := uc.products.Save(product); err != nil {
			return nil, err
		}
	}
	if limit <= 0 {
		limit = 5
	}
	return uc.products.SearchSimilar(*product.Embedding, product.ID, limit)
}

// refreshEmbedding is best-effort: the assessment flow never fails because
// the embedding service is down.
func (uc *AssessmentUsecase) refreshEmbedding(ctx context.Context, product *model.Product) {
	if uc.embedder == nil {
		return
	}
	values, err := uc.embedder.GenerateEmbedding(ctx, product.EmbeddingText())
	if err != nil {
		log.Printf("embedding refresh failed for product %s: %v", product.ID, err)
		return
	}
	vec := pgvector.NewVector(values)
	product.Embedding = &vec
	if err := uc.products.Save(product); err != nil {
		log.Printf("embedding save failed for product %s: %v", product.ID, err)
	}
}

func applyOptional(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func certificationsOrEmpty(c []string) []string {
	if c == nil {
		return []string{}
	}
	return c
}
