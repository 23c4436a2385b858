package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/luxe-storefront/models"
	"github.com/yashrajoria/luxe-storefront/services"
)

const maxImageSize = 5 << 20

// ProductController handles the admin catalog.
type ProductController struct {
	productService services.ProductService
}

func NewProductController(productService services.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// ListProducts handles GET /admin/products.
func (pc *ProductController) ListProducts(ctx *gin.Context) {
	products, svcErr := pc.productService.ListProducts(ctx.Request.Context())
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateProduct handles POST /admin/products.
func (pc *ProductController) CreateProduct(ctx *gin.Context) {
	var req models.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.productService.CreateProduct(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

// DeleteProduct handles DELETE /admin/products/:id.
func (pc *ProductController) DeleteProduct(ctx *gin.Context) {
	if svcErr := pc.productService.DeleteProduct(ctx.Request.Context(), ctx.Param("id")); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadImage handles POST /admin/products/image with a multipart "file" field and
// returns the public URL of the stored image.
func (pc *ProductController) UploadImage(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	if fh.Size > maxImageSize {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds 5MB"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer f.Close()

	url, svcErr := pc.productService.UploadImage(ctx.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"url": url})
}
