package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/transparentpro/transparency-api/internal/dto"
	"github.com/transparentpro/transparency-api/internal/middleware"
	"github.com/transparentpro/transparency-api/internal/model"
	"github.com/transparentpro/transparency-api/internal/response"
	"github.com/transparentpro/transparency-api/internal/usecase"
	"github.com/transparentpro/transparency-api/internal/util"
)

type AssessmentHandler struct {
	uc *usecase.AssessmentUsecase
}

func NewAssessmentHandler(uc *usecase.AssessmentUsecase) *AssessmentHandler {
	return &AssessmentHandler{uc: uc}
}

func (h *AssessmentHandler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/products", h.CreateProduct)
	api.Get("/products", h.ListProducts)
	api.Get("/products/:id", h.GetProduct)
	api.Patch("/products/:id", h.UpdateProduct)
	api.Post("/products/:id/advance", h.Advance)
	api.Post("/products/:id/retreat", h.Retreat)
	api.Get("/products/:id/questions", h.ListQuestions)
	api.Post("/products/:id/generate-questions", middleware.RateLimiter(5, 1*time.Minute), h.GenerateQuestions)
	api.Patch("/questions/:id", h.AnswerQuestion)
	api.Get("/products/:id/report", h.GetReport)
	api.Post("/products/:id/generate-report", middleware.RateLimiter(5, 1*time.Minute), h.GenerateReport)
	api.Get("/products/:id/report/pdf", h.DownloadReportPDF)
	api.Get("/products/:id/similar", h.SimilarProducts)
}

func (h *AssessmentHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	product, err := h.uc.CreateProduct(c.Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Product created",
		Data:    product,
	})
}

func (h *AssessmentHandler) ListProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	products, total, err := h.uc.ListProducts(c.Context(), page, pageSize)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Products retrieved",
		Data:       products,
		Pagination: response.NewPagination(page, pageSize, total),
	})
}

func (h *AssessmentHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.uc.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Product retrieved",
		Data:    product,
	})
}

func (h *AssessmentHandler) UpdateProduct(c *fiber.Ctx) error {
	var in dto.ProductUpdate
	if err := c.BodyParser(&in); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	product, err := h.uc.UpdateProduct(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Product updated",
		Data:    product,
	})
}

func (h *AssessmentHandler) Advance(c *fiber.Ctx) error {
	var in dto.ProductInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "invalid request body",
			}, err)
		}
	}

	product, err := h.uc.Advance(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Step advanced",
		Data:    product,
	})
}

func (h *AssessmentHandler) Retreat(c *fiber.Ctx) error {
	product, err := h.uc.Retreat(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Step retreated",
		Data:    product,
	})
}

func (h *AssessmentHandler) ListQuestions(c *fiber.Ctx) error {
	questions, err := h.uc.ListQuestions(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Questions retrieved",
		Data:    questions,
	})
}

func (h *AssessmentHandler) GenerateQuestions(c *fiber.Ctx) error {
	questions, err := h.uc.GenerateQuestions(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Questions generated",
		Data:    questions,
	})
}

func (h *AssessmentHandler) AnswerQuestion(c *fiber.Ctx) error {
	var in dto.AnswerInput
	if err := c.BodyParser(&in); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	answer, err := model.ValidateAnswer(in.Answer)
	if err != nil {
		return h.fail(c, err)
	}

	question, err := h.uc.SetAnswer(c.Context(), c.Params("id"), answer)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Answer saved",
		Data:    question,
	})
}

func (h *AssessmentHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.uc.GetReport(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Report retrieved",
		Data:    report,
	})
}

func (h *AssessmentHandler) GenerateReport(c *fiber.Ctx) error {
	report, err := h.uc.GenerateReport(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Report generated",
		Data:    report,
	})
}

func (h *AssessmentHandler) DownloadReportPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.RenderReportPDF(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

func (h *AssessmentHandler) SimilarProducts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 5)
	products, err := h.uc.SimilarProducts(c.Context(), c.Params("id"), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Similar products retrieved",
		Data:    products,
	})
}

// fail maps the domain error taxonomy onto HTTP statuses. Unknown errors stay
// opaque 500s.
func (h *AssessmentHandler) fail(c *fiber.Ctx, err error) error {
	var validation *model.ValidationError
	var notFound *model.NotFoundError
	var incomplete *model.IncompleteAssessmentError
	var generation *model.AIGenerationError
	var scoring *model.ScoringError
	var render *model.RenderError

	switch {
	case errors.As(err, &validation):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: validation.Message,
			Details: validation.Fields,
		}, err)
	case errors.As(err, &notFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: notFound.Error(),
		}, err)
	case errors.As(err, &incomplete):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "Please answer at least one question before proceeding",
		}, err)
	case errors.As(err, &generation):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: "Failed to generate questions",
		}, err)
	case errors.As(err, &scoring):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: "Failed to generate report",
		}, err)
	case errors.As(err, &render):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: "Failed to generate PDF report",
		}, err)
	default:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: "Internal server error",
		}, err)
	}
}
