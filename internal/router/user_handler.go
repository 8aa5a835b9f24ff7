package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/pkg/global"
	"example.com/storefront/pkg/models"
	"example.com/storefront/pkg/mongo"
)

func (s *Server) HealthCheck(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

func (s *Server) GetProfile(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := s.store.FindUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User not found", nil))
			return
		}
		log.Printf("Error fetching user: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch profile", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(user))
}

func (s *Server) UpdateProfile(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid profile data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	user, err := s.store.UpdateUserProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User not found", nil))
			return
		}
		log.Printf("Error updating profile: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update profile", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(user))
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.store.ListUsers(c.Request.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to list users", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(users))
}

func (s *Server) DeactivateUser(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	user, err := s.store.DeactivateUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User not found", nil))
			return
		}
		log.Printf("Error deactivating user: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to deactivate user", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(user))
}
