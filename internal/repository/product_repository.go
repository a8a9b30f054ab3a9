package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/transparentpro/transparency-api/internal/model"
	"gorm.io/gorm"
)

type ProductRepositoryInterface interface {
	Create(product *model.Product) error
	Save(product *model.Product) error
	FindByID(id string) (*model.Product, error)
	ListByUser(userID uuid.UUID, page, pageSize int) ([]model.Product, int64, error)
	SearchSimilar(embedding pgvector.Vector, excludeID uuid.UUID, topK int) ([]model.Product, error)
}

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db}
}

func (r *ProductRepository) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *ProductRepository) Save(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *ProductRepository) FindByID(id string) (*model.Product, error) {
	// A malformed id is a lookup miss, not a database error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, &model.NotFoundError{Resource: "product"}
	}
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &model.NotFoundError{Resource: "product"}
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) ListByUser(userID uuid.UUID, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.Model(&model.Product{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	return products, total, err
}

// SearchSimilar ranks other products by embedding distance.
func (r *ProductRepository) SearchSimilar(embedding pgvector.Vector, excludeID uuid.UUID, topK int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Raw(`
        SELECT * FROM products
        WHERE id <> ? AND embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, excludeID, embedding, topK).Scan(&products).Error
	return products, err
}
