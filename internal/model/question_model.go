package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	QuestionCategorySustainability = "sustainability"
	QuestionCategoryQuality        = "quality"
	QuestionCategoryTransparency   = "transparency"
)

const (
	ImportanceHigh   = "high"
	ImportanceMedium = "medium"
	ImportanceLow    = "low"
)

type Question struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID    uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	QuestionText string    `gorm:"type:text;not null" json:"questionText"`
	Answer       string    `gorm:"type:text" json:"answer"`
	Category     string    `gorm:"type:varchar(50);not null" json:"category"`
	Importance   string    `gorm:"type:varchar(50);not null" json:"importance"`
	AIGenerated  bool      `gorm:"default:true" json:"aiGenerated"`
	OrderIndex   int       `gorm:"not null" json:"orderIndex"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Answered reports whether the question has a non-blank answer.
func (q *Question) Answered() bool {
	return trimmed(q.Answer) != ""
}
