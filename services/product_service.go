package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yashrajoria/luxe-storefront/models"
	aws_pkg "github.com/yashrajoria/luxe-storefront/pkg/aws"
	"github.com/yashrajoria/luxe-storefront/repository"
)

// ProductService manages the admin catalog.
type ProductService interface {
	ListProducts(ctx context.Context) ([]models.ProductRecord, *ServiceError)
	CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.ProductRecord, *ServiceError)
	DeleteProduct(ctx context.Context, id string) *ServiceError
	UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, *ServiceError)
}

type productServiceImpl struct {
	repo     repository.ProductRepository
	uploader aws_pkg.ObjectUploader
	logger   *zap.Logger
}

// NewProductService wires the admin catalog. uploader may be nil, in which case image
// uploads are rejected.
func NewProductService(repo repository.ProductRepository, uploader aws_pkg.ObjectUploader, logger *zap.Logger) ProductService {
	return &productServiceImpl{repo: repo, uploader: uploader, logger: logger}
}

func (s *productServiceImpl) ListProducts(ctx context.Context) ([]models.ProductRecord, *ServiceError) {
	products, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to fetch products"}
	}
	if products == nil {
		products = []models.ProductRecord{}
	}
	return products, nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.ProductRecord, *ServiceError) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &ServiceError{StatusCode: 400, Message: "Product name is required"}
	}
	if req.Price.IsNegative() {
		return nil, &ServiceError{StatusCode: 400, Message: "Price cannot be negative"}
	}

	product := &models.ProductRecord{
		Product: models.Product{
			ID:          uuid.NewString(),
			Name:        name,
			Price:       req.Price.Round(2),
			Image:       strings.TrimSpace(req.Image),
			Description: req.Description,
		},
	}
	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "Failed to create product"}
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, id string) *ServiceError {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ServiceError{StatusCode: 404, Message: "Product not found"}
		}
		s.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return &ServiceError{StatusCode: 500, Message: "Failed to delete product"}
	}
	s.logger.Info("Product deleted", zap.String("product_id", id))
	return nil
}

// UploadImage stores a product image under a fresh key and returns its public URL.
func (s *productServiceImpl) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, *ServiceError) {
	if s.uploader == nil {
		return "", &ServiceError{StatusCode: 503, Message: "Image storage is not configured"}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", &ServiceError{StatusCode: 400, Message: "Only image uploads are allowed"}
	}

	key := fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(path.Ext(filename)))
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		s.logger.Error("Failed to upload product image", zap.String("key", key), zap.Error(err))
		return "", &ServiceError{StatusCode: 502, Message: "Failed to upload image"}
	}
	return url, nil
}
