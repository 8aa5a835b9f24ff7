package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"example.com/storefront/pkg/global"
	"example.com/storefront/pkg/models"
	"example.com/storefront/pkg/mongo"
)

// ListProducts returns all products, optionally filtered by ?category=<id>.
func (s *Server) ListProducts(c *gin.Context) {
	var categoryID *bson.ObjectID
	if raw := c.Query("category"); raw != "" {
		id, err := bson.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category filter", []global.ValidationError{
				{Field: "category", Message: "Must be a valid object id", Code: "invalid_format"},
			}))
			return
		}
		categoryID = &id
	}

	products, err := s.store.ListProducts(c.Request.Context(), categoryID)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to list products", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

// GetProduct serves a single product, trying the Redis cache before Mongo.
func (s *Server) GetProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if product, err := s.cache.GetProduct(ctx, id.Hex()); err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(product))
		return
	}

	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		log.Printf("Error fetching product: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch product", nil))
		return
	}

	if cacheErr := s.cache.CacheProduct(ctx, product); cacheErr != nil {
		log.Printf("Warning: failed to cache product %s: %v", id.Hex(), cacheErr)
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	categoryID, err := bson.ObjectIDFromHex(req.CategoryID)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category id", []global.ValidationError{
			{Field: "category_id", Message: "Must be a valid object id", Code: "invalid_format"},
		}))
		return
	}

	ctx := c.Request.Context()

	// The category must exist before a product can reference it.
	if _, err := s.store.FindCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Category does not exist", []global.ValidationError{
				{Field: "category_id", Message: "No category exists with this id", Code: "not_found"},
			}))
			return
		}
		log.Printf("Error checking category: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create product", nil))
		return
	}

	product := req.ToProduct(categoryID)
	if err := s.store.CreateProduct(ctx, product); err != nil {
		log.Printf("Error creating product: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create product", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(product))
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	ctx := c.Request.Context()

	product, err := s.store.UpdateProduct(ctx, id, &req)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		log.Printf("Error updating product: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update product", nil))
		return
	}

	if cacheErr := s.cache.CacheProduct(ctx, product); cacheErr != nil {
		log.Printf("Warning: failed to refresh product cache for %s: %v", id.Hex(), cacheErr)
	}

	c.Header("X-Cache", "REFRESHED")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if err := s.store.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		log.Printf("Error deleting product: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete product", nil))
		return
	}

	if cacheErr := s.cache.InvalidateProduct(ctx, id.Hex()); cacheErr != nil {
		log.Printf("Warning: failed to invalidate product cache for %s: %v", id.Hex(), cacheErr)
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Product deleted"}))
}
