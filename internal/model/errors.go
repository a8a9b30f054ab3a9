package model

import "fmt"

// ValidationError reports user-correctable input problems with per-field detail.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// AIGenerationError wraps a failed or unparsable question-generation call.
type AIGenerationError struct {
	Err error
}

func (e *AIGenerationError) Error() string {
	return fmt.Sprintf("failed to generate AI questions: %v", e.Err)
}

func (e *AIGenerationError) Unwrap() error { return e.Err }

// ScoringError wraps a failed or unparsable scoring call.
type ScoringError struct {
	Err error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("failed to calculate transparency score: %v", e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }

// RenderError wraps a failed PDF render. No persisted state is touched when it occurs.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to generate PDF report: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IncompleteAssessmentError means the questions-step exit gate was not satisfied.
type IncompleteAssessmentError struct{}

func (e *IncompleteAssessmentError) Error() string {
	return "at least one question must be answered before proceeding"
}
