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

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to list categories", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(categories))
}

func (s *Server) GetCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	category, err := s.store.FindCategoryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Category not found", nil))
			return
		}
		log.Printf("Error fetching category: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch category", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(category))
}

func (s *Server) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	category := req.ToCategory()
	if err := s.store.CreateCategory(c.Request.Context(), category); err != nil {
		log.Printf("Error creating category: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create category", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(category))
}

func (s *Server) UpdateCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid category data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	category, err := s.store.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Category not found", nil))
			return
		}
		log.Printf("Error updating category: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update category", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(category))
}

func (s *Server) DeleteCategory(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Category not found", nil))
			return
		}
		log.Printf("Error deleting category: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete category", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Category deleted"}))
}

// objectIDParam parses a path parameter as an object id, responding 400 on
// malformed input.
func objectIDParam(c *gin.Context, name string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid "+name, []global.ValidationError{
			{Field: name, Message: "Must be a valid object id", Code: "invalid_format"},
		}))
		return bson.ObjectID{}, false
	}
	return id, true
}
