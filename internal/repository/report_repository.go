package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/transparentpro/transparency-api/internal/model"
	"gorm.io/gorm"
)

type ReportRepositoryInterface interface {
	Create(report *model.Report) error
	Save(report *model.Report) error
	LatestByProduct(productID string) (*model.Report, error)
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db}
}

func (r *ReportRepository) Create(report *model.Report) error {
	return r.db.Create(report).Error
}

func (r *ReportRepository) Save(report *model.Report) error {
	return r.db.Save(report).Error
}

// LatestByProduct selects the authoritative report: newest by creation time.
func (r *ReportRepository) LatestByProduct(productID string) (*model.Report, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, &model.NotFoundError{Resource: "report"}
	}
	var report model.Report
	err := r.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "report"}
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
