package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/luxe-storefront/catalog"
	apperrors "github.com/yashrajoria/luxe-storefront/common/errors"
)

// CatalogController serves the storefront product list. Source failures are left to
// the error middleware.
type CatalogController struct {
	source catalog.Source
}

func NewCatalogController(source catalog.Source) *CatalogController {
	return &CatalogController{source: source}
}

// ListProducts handles GET /products. Optional ?start and ?end select a window of the
// list the way the home page does.
func (cc *CatalogController) ListProducts(ctx *gin.Context) {
	products, err := cc.source.List(ctx.Request.Context())
	if err != nil {
		_ = ctx.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	start, end := 0, len(products)
	if v, ok := ctx.GetQuery("start"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "start must be an integer"})
			return
		}
		start = n
	}
	if v, ok := ctx.GetQuery("end"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "end must be an integer"})
			return
		}
		end = n
	}

	page := catalog.Slice(products, start, end)
	ctx.JSON(http.StatusOK, gin.H{"products": page, "total": len(products)})
}

// GetProduct handles GET /products/:id.
func (cc *CatalogController) GetProduct(ctx *gin.Context) {
	product, err := cc.source.Get(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		_ = ctx.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}
