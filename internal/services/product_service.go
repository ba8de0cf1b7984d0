package services

import (
	"go.uber.org/zap"

	"prostore/internal/models"
	"prostore/internal/repositories"
	"prostore/internal/validation"
	"prostore/pkg/logger"
	"prostore/pkg/rabbitmq"
)

// ProductService handles business logic related to products: validation and
// normalization, persistence, and event publication for each mutation.
type ProductService struct {
	repo     repositories.ProductRepository
	mqClient *rabbitmq.Client
}

// NewProductService creates a new ProductService. mqClient may be nil, in
// which case event publication is skipped.
func NewProductService(repo repositories.ProductRepository, mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// ListProducts retrieves all products.
func (s *ProductService) ListProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// CreateProduct validates and normalizes the input, stores the new row and
// returns it with the assigned id.
func (s *ProductService) CreateProduct(in *models.ProductInput) (*models.Product, error) {
	product, err := validation.NormalizeCreate(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	s.publishEvent("product.created", product)
	return product, nil
}

// UpdateProduct merges the supplied fields over the stored row. Absent
// fields keep their stored values; an explicit stock of 0 is preserved.
func (s *ProductService) UpdateProduct(id uint, in *models.ProductInput) (*models.Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	merged, err := validation.NormalizeUpdate(in, existing)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(merged); err != nil {
		return nil, err
	}
	s.publishEvent("product.updated", merged)
	return merged, nil
}

// DeleteProduct deletes a product by its ID. The delete is unconditional
// and final.
func (s *ProductService) DeleteProduct(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("product.deleted", map[string]uint{"id": id})
	return nil
}

// publishEvent sends a mutation event to the product queue. Publication is
// best effort: a missing client or a broker failure never fails the request.
func (s *ProductService) publishEvent(event string, payload interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishProductEvent(event, payload); err != nil {
		logger.Get().Warn("failed to publish product event",
			zap.String("event", event), zap.Error(err))
	}
}
