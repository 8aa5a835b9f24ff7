package router

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/auth"
	"example.com/storefront/pkg/global"
	"example.com/storefront/pkg/models"
	"example.com/storefront/pkg/mongo"
)

func (s *Server) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid registration data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to register user", nil))
		return
	}

	user := req.ToUser(hashed)
	if err := s.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, mongo.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, global.ErrorResponse("Email already registered", []global.ValidationError{
				{Field: "email", Message: "An account with this email already exists", Code: "duplicate"},
			}))
			return
		}
		log.Printf("Error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to register user", nil))
		return
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		log.Printf("Error issuing token: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to register user", nil))
		return
	}

	go func() {
		if err := s.mailer.Welcome(user); err != nil {
			log.Printf("Warning: failed to send welcome mail to %s: %v", user.Email, err)
		}
	}()

	c.JSON(http.StatusCreated, global.SuccessResponse(gin.H{"user": user, "token": token}))
}

func (s *Server) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid login data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	user, err := s.store.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.Password, req.Password) {
		// One message for both unknown email and wrong password.
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Account is deactivated", nil))
		return
	}

	token, err := s.auth.IssueToken(user)
	if err != nil {
		log.Printf("Error issuing token: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to log in", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"user": user, "token": token}))
}

// Logout blacklists the presented token for the rest of its lifetime.
func (s *Server) Logout(c *gin.Context) {
	claims, _ := currentClaims(c)
	token := c.GetString(contextKeyToken)

	ttl := auth.TokenTTL
	if claims != nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 {
		if err := s.blacklist.Add(c.Request.Context(), token, ttl); err != nil {
			log.Printf("Error blacklisting token: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to log out", nil))
			return
		}
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Logged out successfully"}))
}

func (s *Server) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request", []global.ValidationError{
			{Field: "email", Message: "A valid email is required", Code: "validation_failed"},
		}))
		return
	}

	token := auth.NewResetToken()
	user, err := s.store.SetResetToken(c.Request.Context(), req.Email, token, time.Now().Add(auth.ResetTokenTTL))
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("User not found", nil))
			return
		}
		log.Printf("Error storing reset token: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to process request", nil))
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", global.GetFrontendURL(), token)
	go func() {
		if err := s.mailer.PasswordReset(user.Email, resetURL); err != nil {
			log.Printf("Warning: failed to send reset mail to %s: %v", user.Email, err)
		}
	}()

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Password reset link sent"}))
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request", []global.ValidationError{
			{Field: "password", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to reset password", nil))
		return
	}

	if _, err := s.store.ResetPassword(c.Request.Context(), c.Param("token"), hashed); err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid or expired reset token", nil))
			return
		}
		log.Printf("Error resetting password: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to reset password", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Password has been reset"}))
}
