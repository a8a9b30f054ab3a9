package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/transparentpro/transparency-api/internal/model"
	"github.com/transparentpro/transparency-api/internal/service"
	"github.com/transparentpro/transparency-api/internal/usecase"
)

type memProductRepo struct {
	products map[string]*model.Product
}

func (m *memProductRepo) Create(p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	m.products[p.ID.String()] = &cp
	return nil
}

func (m *memProductRepo) Save(p *model.Product) error {
	cp := *p
	m.products[p.ID.String()] = &cp
	return nil
}

func (m *memProductRepo) FindByID(id string) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, &model.NotFoundError{Resource: "product"}
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) ListByUser(userID uuid.UUID, page, pageSize int) ([]model.Product, int64, error) {
	out := []model.Product{}
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memProductRepo) SearchSimilar(embedding pgvector.Vector, excludeID uuid.UUID, topK int) ([]model.Product, error) {
	return []model.Product{}, nil
}

type memQuestionRepo struct {
	questions map[string]*model.Question
}

func (m *memQuestionRepo) Create(q *model.Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	cp := *q
	m.questions[q.ID.String()] = &cp
	return nil
}

func (m *memQuestionRepo) Save(q *model.Question) error {
	cp := *q
	m.questions[q.ID.String()] = &cp
	return nil
}

func (m *memQuestionRepo) FindByID(id string) (*model.Question, error) {
	q, ok := m.questions[id]
	if !ok {
		return nil, &model.NotFoundError{Resource: "question"}
	}
	cp := *q
	return &cp, nil
}

func (m *memQuestionRepo) ListByProduct(productID string) ([]model.Question, error) {
	out := []model.Question{}
	for _, q := range m.questions {
		if q.ProductID.String() == productID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *memQuestionRepo) CountByProduct(productID string) (int64, error) {
	qs, _ := m.ListByProduct(productID)
	return int64(len(qs)), nil
}

type memReportRepo struct {
	reports map[string]*model.Report
}

func (m *memReportRepo) Create(r *model.Report) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	m.reports[r.ProductID.String()] = &cp
	return nil
}

func (m *memReportRepo) Save(r *model.Report) error {
	cp := *r
	m.reports[r.ProductID.String()] = &cp
	return nil
}

func (m *memReportRepo) LatestByProduct(productID string) (*model.Report, error) {
	r, ok := m.reports[productID]
	if !ok {
		return nil, &model.NotFoundError{Resource: "report"}
	}
	cp := *r
	return &cp, nil
}

type memUserRepo struct{ user model.User }

func (m *memUserRepo) FindOrCreateByUsername(username, email string) (*model.User, error) {
	if m.user.ID == uuid.Nil {
		m.user = model.User{ID: uuid.New(), Username: username, Email: email}
	}
	return &m.user, nil
}

type memGateway struct{}

func (memGateway) GenerateQuestions(ctx context.Context, product *model.Product) ([]service.GeneratedQuestion, error) {
	return []service.GeneratedQuestion{
		{QuestionText: "Where is it made?", Category: "transparency", Importance: "high", OrderIndex: 1},
	}, nil
}

func (memGateway) ScoreProduct(ctx context.Context, product *model.Product, answers []service.QuestionAnswer) (*service.Scoring, error) {
	return &service.Scoring{
		OverallScore:        72,
		SustainabilityScore: 80,
		QualityScore:        65,
		TransparencyScore:   70,
		Insights:            []string{"Good sourcing disclosure"},
		Recommendations:     []string{"Disclose dyeing process"},
	}, nil
}

type memRenderer struct{}

func (memRenderer) RenderReport(ctx context.Context, product *model.Product, questions []model.Question, report *model.Report) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

func newTestApp(t *testing.T) (*fiber.App, *memQuestionRepo) {
	t.Helper()
	questions := &memQuestionRepo{questions: map[string]*model.Question{}}
	uc := usecase.NewAssessmentUsecase(
		&memProductRepo{products: map[string]*model.Product{}},
		questions,
		&memReportRepo{reports: map[string]*model.Report{}},
		&memUserRepo{},
		memGateway{},
		memRenderer{},
		nil,
	)
	require.NoError(t, uc.Bootstrap(context.Background()))

	app := fiber.New()
	NewAssessmentHandler(uc).RegisterRoutes(app)
	return app, questions
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestCreateProductEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/products", fiber.Map{
		"name":     "Organic Cotton Tee",
		"category": "textiles-clothing",
	})
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.True(t, gjson.Get(body, "success").Bool())
	assert.Equal(t, "Organic Cotton Tee", gjson.Get(body, "data.name").String())
	assert.Equal(t, int64(2), gjson.Get(body, "data.currentStep").Int())
}

func TestCreateProductEndpointRejectsInvalidInput(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/products", fiber.Map{
		"name":     "Widget",
		"category": "gadgets",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, gjson.Get(body, "success").Bool())
	assert.True(t, gjson.Get(body, "details.category").Exists())
}

func TestGetProductEndpointNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/products/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.False(t, gjson.Get(body, "success").Bool())
}

func TestAnswerQuestionEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	_, created := doJSON(t, app, fiber.MethodPost, "/api/products", fiber.Map{
		"name":     "Organic Cotton Tee",
		"category": "textiles-clothing",
	})
	productID := gjson.Get(created, "data.id").String()

	_, generated := doJSON(t, app, fiber.MethodPost, "/api/products/"+productID+"/generate-questions", nil)
	questionID := gjson.Get(generated, "data.0.id").String()
	require.NotEmpty(t, questionID)

	// Answers must be strings: numeric payloads are a field-level validation error.
	resp, body := doJSON(t, app, fiber.MethodPatch, "/api/questions/"+questionID, fiber.Map{"answer": 42})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.True(t, gjson.Get(body, "details.answer").Exists())

	resp, body = doJSON(t, app, fiber.MethodPatch, "/api/questions/"+questionID, fiber.Map{"answer": "Made in Portugal"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Made in Portugal", gjson.Get(body, "data.answer").String())
}

func TestAdvanceGateViaHTTP(t *testing.T) {
	app, _ := newTestApp(t)

	_, created := doJSON(t, app, fiber.MethodPost, "/api/products", fiber.Map{
		"name":     "Organic Cotton Tee",
		"category": "textiles-clothing",
	})
	productID := gjson.Get(created, "data.id").String()

	// Details step passes and seeds questions.
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/products/"+productID+"/advance", fiber.Map{"materials": "organic cotton"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(3), gjson.Get(body, "data.currentStep").Int())

	// Questions step without answers is rejected.
	resp, body = doJSON(t, app, fiber.MethodPost, "/api/products/"+productID+"/advance", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please answer at least one question before proceeding", gjson.Get(body, "message").String())
}

func TestReportEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	_, created := doJSON(t, app, fiber.MethodPost, "/api/products", fiber.Map{
		"name":     "Organic Cotton Tee",
		"category": "textiles-clothing",
	})
	productID := gjson.Get(created, "data.id").String()

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/products/"+productID+"/report", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/products/"+productID+"/generate-report", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 72.0, gjson.Get(body, "data.overallScore").Float())
	assert.Equal(t, "completed", gjson.Get(body, "data.status").String())

	resp, body = doJSON(t, app, fiber.MethodGet, "/api/products/"+productID+"/report", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Good sourcing disclosure", gjson.Get(body, "data.insights.0").String())
}

func TestDownloadReportPDFEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	_, created := doJSON(t, app, fiber.MethodPost, "/api/products", fiber.Map{
		"name":     "Organic Cotton Tee",
		"category": "textiles-clothing",
	})
	productID := gjson.Get(created, "data.id").String()

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/products/"+productID+"/report/pdf", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	doJSON(t, app, fiber.MethodPost, "/api/products/"+productID+"/generate-report", nil)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/products/"+productID+"/report/pdf", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, `attachment; filename="transparency-report-organic_cotton_tee.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
	assert.Equal(t, "%PDF-stub", body)
}
