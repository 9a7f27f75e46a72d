package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/iyhunko/product-catalog/internal/service"
)

// ProductController handles HTTP requests for product operations.
type ProductController struct {
	productService *service.ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// ListProductsRequest represents the query parameters for listing products.
// At most one filter is applied, in the order name, category, available, price.
type ListProductsRequest struct {
	Name      string `form:"name"`
	Category  string `form:"category"`
	Available string `form:"available"`
	Price     string `form:"price"`
	Limit     int32  `form:"limit"`
	Token     string `form:"token"`
}

// ListProductsResponse represents the response body for listing products.
type ListProductsResponse struct {
	Products      []model.Record `json:"products"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

// CreateProduct handles the HTTP POST request for creating a new product.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	body, err := decodeBody(c)
	if err != nil {
		writeError(c, err)
		return
	}

	product, err := pc.productService.CreateProduct(c.Request.Context(), body)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/products/%d", product.ID))
	c.JSON(http.StatusCreated, product.Serialize())
}

// GetProduct handles the HTTP GET request for a single product.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product.Serialize())
}

// UpdateProduct handles the HTTP PUT request replacing the fields of a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	body, err := decodeBody(c)
	if err != nil {
		writeError(c, err)
		return
	}

	product, err := pc.productService.UpdateProduct(c.Request.Context(), id, body)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, product.Serialize())
}

// DeleteProduct handles the HTTP DELETE request for deleting a product by ID.
// Deleting a product that does not exist succeeds.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	err := pc.productService.DeleteProduct(c.Request.Context(), id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProducts handles the HTTP GET request for listing products with pagination.
func (pc *ProductController) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query, err := req.query()
	if err != nil {
		writeError(c, err)
		return
	}
	if err := query.ApplyPagination(req.Limit, req.Token); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		writeError(c, err)
		return
	}

	response := ListProductsResponse{
		Products: make([]model.Record, 0, len(products)),
	}
	for _, product := range products {
		response.Products = append(response.Products, product.Serialize())
	}

	// a full page means there may be more
	if len(products) > 0 && len(products) == query.Limit {
		paginator := repository.Paginator{
			LastID: products[len(products)-1].ID,
		}
		response.NextPageToken = paginator.Encode()
	}

	c.JSON(http.StatusOK, response)
}

func (req ListProductsRequest) query() (*repository.Query, error) {
	query := repository.NewQuery()
	switch {
	case req.Name != "":
		return query.With(repository.NameField, req.Name), nil
	case req.Category != "":
		category, err := model.ParseCategory(strings.ToUpper(req.Category))
		if err != nil {
			return nil, err
		}
		return query.With(repository.CategoryField, category), nil
	case req.Available != "":
		available, err := strconv.ParseBool(req.Available)
		if err != nil {
			return nil, fmt.Errorf("%w: available=%s", model.ErrMalformedBody, req.Available)
		}
		return query.With(repository.AvailableField, available), nil
	case req.Price != "":
		price, err := model.ParsePrice(req.Price)
		if err != nil {
			return nil, err
		}
		return query.With(repository.PriceField, price), nil
	}
	return query, nil
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
		return 0, false
	}
	return id, true
}

// decodeBody reads the JSON body keeping numbers exact.
func decodeBody(c *gin.Context) (any, error) {
	var body any
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedBody, err)
	}
	return body, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMalformedBody),
		errors.Is(err, model.ErrMissingField),
		errors.Is(err, model.ErrInvalidType),
		errors.Is(err, model.ErrInvalidAttribute):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, repository.ErrEmptyID), errors.Is(err, repository.ErrAlreadyPersisted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error("request failed",
			slog.Any("err", err),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
