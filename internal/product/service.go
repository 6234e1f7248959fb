package product

import (
	"context"

	"shopflow-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, opts ListOptions) ([]*Product, error)
	CreateProduct(ctx context.Context, input NewProduct) (*Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, opts ListOptions) ([]*Product, error) {
	return s.repo.ListProducts(ctx, opts)
}

func (s *service) CreateProduct(ctx context.Context, input NewProduct) (*Product, error) {
	if input.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p, err := s.repo.CreateProduct(ctx, input)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create product",
			zap.String("name", input.Name),
			zap.Error(err),
		)
		return nil, err
	}

	return p, nil
}

func (s *service) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}
