package productsvc

import (
	"context"

	"github.com/corray333/backend-labs/microshop/internal/product/service/models/product"
)

// ProductService serves the fixed product catalogue.
type ProductService struct{}

func NewProductService() *ProductService {
	return &ProductService{}
}

// ListProducts returns a fresh copy of the catalogue on every call.
func (s *ProductService) ListProducts(_ context.Context) []product.Product {
	return []product.Product{
		{ID: 1, Name: "Product A"},
		{ID: 2, Name: "Product B"},
	}
}
