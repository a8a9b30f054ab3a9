package util

import (
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/transparentpro/transparency-api/internal/config"
	"github.com/transparentpro/transparency-api/internal/response"
)

type SuccessResponseFormat struct {
	Code       int
	Message    string
	Data       any
	Pagination *response.Pagination
}

type successEnvelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Pagination *response.Pagination `json:"pagination,omitempty"`
	Data       any                  `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code    int
	Message string
	Details any
}

type errorEnvelope struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	DevMessage string `json:"dev_message,omitempty"`
	Trace      string `json:"trace,omitempty"`
}

// SuccessResponse writes the standard success envelope.
func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(successEnvelope{
		Success:    true,
		Message:    params.Message,
		Data:       params.Data,
		Pagination: params.Pagination,
	})
}

// ErrorResponse writes the standard error envelope. Internals (original error
// text, stack trace) are exposed only outside production.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, errs ...error) error {
	envelope := errorEnvelope{
		Success: false,
		Message: params.Message,
		Details: params.Details,
	}
	if config.LoadAppConfig().Env != "production" && len(errs) > 0 && errs[0] != nil {
		envelope.DevMessage = errs[0].Error()
		envelope.Trace = string(debug.Stack())
	}

	code := params.Code
	if code == 0 {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(envelope)
}
