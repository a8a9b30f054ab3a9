package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/transparentpro/transparency-api/internal/model"
	"gorm.io/gorm"
)

type QuestionRepositoryInterface interface {
	Create(question *model.Question) error
	Save(question *model.Question) error
	FindByID(id string) (*model.Question, error)
	ListByProduct(productID string) ([]model.Question, error)
	CountByProduct(productID string) (int64, error)
}

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

func (r *QuestionRepository) Save(question *model.Question) error {
	return r.db.Save(question).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &model.NotFoundError{Resource: "question"}
	}
	var question model.Question
	err := r.db.First(&question, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "question"}
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListByProduct returns questions in display order.
func (r *QuestionRepository) ListByProduct(productID string) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.Where("product_id = ?", productID).
		Order("order_index ASC").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CountByProduct(productID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}
