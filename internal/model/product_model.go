package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Assessment steps. The current step is persisted on the product row so the
// wizard survives restarts and horizontal replicas without sticky sessions.
const (
	StepBasicInfo = 1
	StepDetails   = 2
	StepQuestions = 3
	StepReview    = 4
)

const (
	ProductStatusDraft      = "draft"
	ProductStatusInProgress = "in_progress"
	ProductStatusCompleted  = "completed"
)

type Product struct {
	ID                   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;index" json:"userId"`
	Name                 string    `gorm:"type:varchar(255);not null" json:"name"`
	Category             string    `gorm:"type:varchar(100);not null" json:"category"`
	Brand                string    `gorm:"type:varchar(255)" json:"brand"`
	Description          string    `gorm:"type:text" json:"description"`
	Weight               string    `gorm:"type:varchar(100)" json:"weight"`
	Dimensions           string    `gorm:"type:varchar(255)" json:"dimensions"`
	Materials            string    `gorm:"type:text" json:"materials"`
	ManufacturingCountry string    `gorm:"type:varchar(100)" json:"manufacturingCountry"`
	ManufacturingDate    string    `gorm:"type:varchar(100)" json:"manufacturingDate"`
	Certifications       []string  `gorm:"type:jsonb;serializer:json" json:"certifications"`
	ImageURL             string    `gorm:"type:text" json:"imageUrl"`
	Status               string    `gorm:"type:varchar(50);default:draft" json:"status"`
	CurrentStep          int       `gorm:"default:1" json:"currentStep"`
	// Nil until an embedding has been computed: postgres rejects a
	// zero-dimension vector, so an absent embedding must persist as NULL.
	Embedding *pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// EmbeddingText is the text fed to the embedding model for similarity search.
func (p *Product) EmbeddingText() string {
	return p.Name + "\n" + p.Category + "\n" + p.Description + "\n" + p.Materials
}
