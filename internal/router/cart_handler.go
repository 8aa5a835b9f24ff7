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

// GetCart returns the user's cart joined with current product data. Lines
// whose product has since been deleted are skipped.
func (s *Server) GetCart(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	lines, err := s.store.LinesByUser(ctx, userID)
	if err != nil {
		log.Printf("Error fetching cart: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch cart", nil))
		return
	}

	view := models.CartView{Items: []models.CartLineView{}}
	for _, line := range lines {
		product, err := s.store.FindProductByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, mongo.ErrNotFound) {
				continue
			}
			log.Printf("Error fetching cart product: %v", err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to fetch cart", nil))
			return
		}

		item := models.CartLineView{
			LineID:    line.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
			Subtotal:  product.Price * float64(line.Quantity),
		}
		view.Items = append(view.Items, item)
		view.Total += item.Subtotal
	}

	c.JSON(http.StatusOK, global.SuccessResponse(view))
}

func (s *Server) AddToCart(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid cart data", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation_failed"},
		}))
		return
	}

	productID, err := bson.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product id", []global.ValidationError{
			{Field: "product_id", Message: "Must be a valid object id", Code: "invalid_format"},
		}))
		return
	}

	ctx := c.Request.Context()

	product, err := s.store.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		log.Printf("Error fetching product: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add to cart", nil))
		return
	}
	if !product.InStock() {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Product is out of stock", []global.ValidationError{
			{Field: "product_id", Message: "This product is currently out of stock", Code: "out_of_stock"},
		}))
		return
	}

	if err := s.store.AddLine(ctx, userID, productID, req.Quantity); err != nil {
		log.Printf("Error adding cart line: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to add to cart", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Added to cart"}))
}

func (s *Server) UpdateCartLine(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}
	lineID, ok := objectIDParam(c, "lineId")
	if !ok {
		return
	}

	var req models.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid cart data", []global.ValidationError{
			{Field: "quantity", Message: "Quantity must be at least 1", Code: "validation_failed"},
		}))
		return
	}

	line, err := s.store.UpdateLineQuantity(c.Request.Context(), lineID, userID, req.Quantity)
	if err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Cart item not found", nil))
			return
		}
		log.Printf("Error updating cart line: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update cart", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(line))
}

func (s *Server) RemoveFromCart(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}
	lineID, ok := objectIDParam(c, "lineId")
	if !ok {
		return
	}

	if err := s.store.DeleteLine(c.Request.Context(), lineID, userID); err != nil {
		if errors.Is(err, mongo.ErrNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Cart item not found", nil))
			return
		}
		log.Printf("Error removing cart line: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to remove from cart", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Removed from cart"}))
}

func (s *Server) ClearCart(c *gin.Context) {
	userID, _, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteAllForUser(c.Request.Context(), userID); err != nil {
		log.Printf("Error clearing cart: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to clear cart", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Cart cleared"}))
}
