package repositories

import (
	"errors"

	"prostore/internal/models"
)

// ErrProductNotFound is returned when a referenced product id has no row.
// Callers use errors.Is against it to map storage misses to 404 semantics.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
}
