package controllers_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/luxe-storefront/common/auth"
	"github.com/yashrajoria/luxe-storefront/controllers"
	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/routes"
	"github.com/yashrajoria/luxe-storefront/services"
)

// --- Mock ProductService ---

type mockProductService struct {
	listFn   func(ctx context.Context) ([]models.ProductRecord, *services.ServiceError)
	createFn func(ctx context.Context, req *models.CreateProductRequest) (*models.ProductRecord, *services.ServiceError)
	deleteFn func(ctx context.Context, id string) *services.ServiceError
	uploadFn func(ctx context.Context, filename, contentType string, body io.Reader) (string, *services.ServiceError)
}

func (m *mockProductService) ListProducts(ctx context.Context) ([]models.ProductRecord, *services.ServiceError) {
	return m.listFn(ctx)
}
func (m *mockProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.ProductRecord, *services.ServiceError) {
	return m.createFn(ctx, req)
}
func (m *mockProductService) DeleteProduct(ctx context.Context, id string) *services.ServiceError {
	return m.deleteFn(ctx, id)
}
func (m *mockProductService) UploadImage(ctx context.Context, filename, contentType string, body io.Reader) (string, *services.ServiceError) {
	return m.uploadFn(ctx, filename, contentType, body)
}

func setupProductRouter(svc services.ProductService) *gin.Engine {
	r := gin.New()
	routes.RegisterProductRoutes(r, controllers.NewProductController(svc), auth.NewTokenParser(testJWTSecret))
	return r
}

func TestProducts_Create(t *testing.T) {
	svc := &mockProductService{
		createFn: func(_ context.Context, req *models.CreateProductRequest) (*models.ProductRecord, *services.ServiceError) {
			return &models.ProductRecord{Product: models.Product{ID: "p-1", Name: req.Name, Price: req.Price}}, nil
		},
	}
	r := setupProductRouter(svc)
	admin := bearer(t, "admin-1", "a@example.com", "admin")

	w := authed(t, r, http.MethodPost, "/admin/products", admin, `{"name":"Lamp","price":49.99}`)
	require.Equal(t, http.StatusCreated, w.Code)
	product := decode(t, w)["product"].(map[string]interface{})
	assert.Equal(t, "Lamp", product["name"])
	assert.Equal(t, 49.99, product["price"])

	w = authed(t, r, http.MethodPost, "/admin/products", admin, `{"price":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProducts_ListAndDelete(t *testing.T) {
	svc := &mockProductService{
		listFn: func(context.Context) ([]models.ProductRecord, *services.ServiceError) {
			return []models.ProductRecord{{Product: models.Product{ID: "p-1", Price: decimal.NewFromInt(5)}}}, nil
		},
		deleteFn: func(_ context.Context, id string) *services.ServiceError {
			if id != "p-1" {
				return &services.ServiceError{StatusCode: 404, Message: "Product not found"}
			}
			return nil
		},
	}
	r := setupProductRouter(svc)
	admin := bearer(t, "admin-1", "a@example.com", "admin")

	w := authed(t, r, http.MethodGet, "/admin/products", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["products"], 1)

	assert.Equal(t, http.StatusOK, authed(t, r, http.MethodDelete, "/admin/products/p-1", admin, "").Code)
	assert.Equal(t, http.StatusNotFound, authed(t, r, http.MethodDelete, "/admin/products/p-2", admin, "").Code)
}

func TestProducts_RequireAdmin(t *testing.T) {
	r := setupProductRouter(&mockProductService{})
	w := authed(t, r, http.MethodGet, "/admin/products", bearer(t, "u", "u@example.com", "customer"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProducts_UploadImage(t *testing.T) {
	var gotName, gotType string
	var gotBody []byte
	svc := &mockProductService{
		uploadFn: func(_ context.Context, filename, contentType string, body io.Reader) (string, *services.ServiceError) {
			gotName, gotType = filename, contentType
			gotBody, _ = io.ReadAll(body)
			return "https://cdn.example.com/products/abc.png", nil
		},
	}
	r := setupProductRouter(svc)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="lamp.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/products/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, "admin-1", "a@example.com", "admin"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "https://cdn.example.com/products/abc.png", decode(t, w)["url"])
	assert.Equal(t, "lamp.png", gotName)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", string(gotBody))
}

func TestProducts_UploadImageMissingFile(t *testing.T) {
	r := setupProductRouter(&mockProductService{})
	w := authed(t, r, http.MethodPost, "/admin/products/image", bearer(t, "admin-1", "a@example.com", "admin"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
