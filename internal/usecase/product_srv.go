package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"click-collect/internal/apperr"
	"click-collect/internal/data/entity"
	"click-collect/internal/data/repository"
	"click-collect/internal/dto/request"
	"click-collect/internal/dto/response"
	"click-collect/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ProductService interface {
	ListProducts(ctx context.Context, req *request.ProductListRequest) (*response.PaginatedResponse[response.ProductResponse], error)
	GetProduct(ctx context.Context, productID string) (*response.ProductResponse, error)
	CreateProduct(ctx context.Context, ownerID string, req *request.ProductRequest) (*response.ProductResponse, error)
	DeleteProduct(ctx context.Context, ownerID, productID string) error
}

type productService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewProductService(repo *repository.Repository, log *zap.Logger) ProductService {
	return &productService{
		repo: repo,
		log:  log.With(zap.String("service", "product")),
	}
}

func (s *productService) ListProducts(ctx context.Context, req *request.ProductListRequest) (*response.PaginatedResponse[response.ProductResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		return nil, apperr.Validation("min_price must not exceed max_price")
	}

	filter := entity.ProductFilter{
		Category: req.Category,
		Search:   req.Search,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
	}
	if req.StoreID != nil {
		storeID, err := uuid.Parse(*req.StoreID)
		if err != nil {
			return nil, apperr.Validation("invalid store ID %q", *req.StoreID)
		}
		filter.StoreID = &storeID
	}
	if req.Gender != nil {
		gender := entity.Gender(*req.Gender)
		filter.Gender = &gender
	}

	products, err := s.repo.Product.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, apperr.Transport("list products", err)
	}

	total, err := s.repo.Product.CountAll(ctx, filter)
	if err != nil {
		return nil, apperr.Transport("count products", err)
	}

	data := make([]response.ProductResponse, 0, len(products))
	for _, p := range products {
		data = append(data, response.ProductToResponse(p))
	}

	return response.NewPaginatedResponse(data, req.Page, req.Limit(), total), nil
}

func (s *productService) GetProduct(ctx context.Context, productID string) (*response.ProductResponse, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, apperr.Validation("invalid product ID %q", productID)
	}

	product, err := s.repo.Product.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Transport("get product", err)
	}
	if product == nil || !product.IsActive {
		return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
	}

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) CreateProduct(ctx context.Context, ownerID string, req *request.ProductRequest) (*response.ProductResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create product validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}

	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		StoreID:     store.ID,
		StoreName:   store.Name,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Gender:      entity.Gender(req.Gender),
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		Stock:       req.Stock,
		IsActive:    true,
	}

	if err := s.repo.Product.Create(ctx, product); err != nil {
		return nil, apperr.Transport("create product", err)
	}

	s.log.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("store_id", store.ID.String()))

	resp := response.ProductToResponse(product)
	return &resp, nil
}

func (s *productService) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	id, err := uuid.Parse(productID)
	if err != nil {
		return apperr.Validation("invalid product ID %q", productID)
	}

	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return err
	}

	if err := s.repo.Product.Delete(ctx, id, store.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Transport("delete product", err)
	}
	return nil
}

func (s *productService) ownedStore(ctx context.Context, ownerID string) (*entity.Store, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, apperr.Validation("invalid user ID %q", ownerID)
	}

	store, err := s.repo.Profile.FindStoreByOwner(ctx, owner)
	if err != nil {
		return nil, apperr.Transport("find store", err)
	}
	if store == nil || store.Status != entity.StoreStatusActive {
		return nil, fmt.Errorf("no active store for %s: %w", ownerID, apperr.ErrForbidden)
	}
	return store, nil
}
