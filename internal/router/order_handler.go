package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/storefront/internal/checkout"
	"example.com/storefront/pkg/global"
	"example.com/storefront/pkg/models"
)

func (s *Server) PlaceOrder(c *gin.Context) {
	userID, claims, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order data", []global.ValidationError{
			{Field: "shipping_address", Message: "Shipping address is required", Code: "validation_failed"},
		}))
		return
	}

	order, err := s.checkout.PlaceOrder(c.Request.Context(), userID, claims.Email, checkout.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		s.respondCheckoutError(c, err, "Failed to place order")
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(order))
}

func (s *Server) ListMyOrders(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := s.checkout.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error listing orders: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to list orders", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (s *Server) GetMyOrder(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	order, err := s.checkout.GetUserOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		s.respondCheckoutError(c, err, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (s *Server) CancelOrder(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	order, err := s.checkout.CancelOrder(c.Request.Context(), orderID, userID)
	if err != nil {
		s.respondCheckoutError(c, err, "Failed to cancel order")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (s *Server) ListAllOrders(c *gin.Context) {
	orders, err := s.checkout.ListAllOrders(c.Request.Context())
	if err != nil {
		log.Printf("Error listing all orders: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to list orders", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (s *Server) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid status data", []global.ValidationError{
			{Field: "status", Message: "Status is required", Code: "validation_failed"},
		}))
		return
	}

	order, err := s.checkout.UpdateOrderStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		s.respondCheckoutError(c, err, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// respondCheckoutError maps the checkout engine's error taxonomy onto HTTP
// statuses; anything outside the taxonomy is a 500.
func (s *Server) respondCheckoutError(c *gin.Context, err error, fallback string) {
	var stockErr *checkout.InsufficientStockError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Cart is empty", []global.ValidationError{
			{Field: "cart", Message: "Add items to the cart before placing an order", Code: "empty_cart"},
		}))
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, global.ErrorResponse(stockErr.Error(), []global.ValidationError{
			{Field: "cart", Message: stockErr.Error(), Code: "insufficient_stock"},
		}))
	case errors.Is(err, checkout.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
	case errors.Is(err, checkout.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Order can no longer be cancelled", nil))
	case errors.Is(err, checkout.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order status", []global.ValidationError{
			{Field: "status", Message: "Unknown order status", Code: "invalid_status"},
		}))
	default:
		log.Printf("Checkout error: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse(fallback, nil))
	}
}
