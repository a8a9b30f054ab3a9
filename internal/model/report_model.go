package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportStatusGenerating = "generating"
	ReportStatusCompleted  = "completed"
	ReportStatusFailed     = "failed"
)

type Report struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID           uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	OverallScore        float64   `gorm:"type:decimal(5,2);not null" json:"overallScore"`
	SustainabilityScore float64   `gorm:"type:decimal(5,2);not null" json:"sustainabilityScore"`
	QualityScore        float64   `gorm:"type:decimal(5,2);not null" json:"qualityScore"`
	TransparencyScore   float64   `gorm:"type:decimal(5,2);not null" json:"transparencyScore"`
	Insights            []string  `gorm:"type:jsonb;serializer:json" json:"insights"`
	Recommendations     []string  `gorm:"type:jsonb;serializer:json" json:"recommendations"`
	PdfURL              string    `gorm:"type:text" json:"pdfUrl"`
	Status              string    `gorm:"type:varchar(50);default:generating" json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
}
