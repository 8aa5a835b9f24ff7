package router

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"example.com/storefront/internal/auth"
	"example.com/storefront/internal/checkout"
	"example.com/storefront/pkg/models"
	"example.com/storefront/pkg/mongo"
	"example.com/storefront/pkg/redis"
)

// CheckoutEngine is the slice of the checkout engine the order handlers use.
type CheckoutEngine interface {
	PlaceOrder(ctx context.Context, userID bson.ObjectID, email string, in checkout.PlaceOrderInput) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID bson.ObjectID, status string) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID bson.ObjectID) ([]models.Order, error)
	GetUserOrder(ctx context.Context, orderID, userID bson.ObjectID) (*models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
}

// TokenBlacklist revokes issued tokens until they expire on their own.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// MailSender covers the account mails the auth handlers send.
type MailSender interface {
	Welcome(user *models.User) error
	PasswordReset(email, resetURL string) error
}

type Server struct {
	store     *mongo.Store
	cache     *redis.ProductCache
	blacklist TokenBlacklist
	auth      *auth.Service
	mailer    MailSender
	checkout  CheckoutEngine
}

type Deps struct {
	Store     *mongo.Store
	Cache     *redis.ProductCache
	Blacklist TokenBlacklist
	Auth      *auth.Service
	Mailer    MailSender
	Checkout  CheckoutEngine
}

func New(deps Deps) (*Server, *gin.Engine) {
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		store:     deps.Store,
		cache:     deps.Cache,
		blacklist: deps.Blacklist,
		auth:      deps.Auth,
		mailer:    deps.Mailer,
		checkout:  deps.Checkout,
	}
	s.registerRoutes(engine)
	return s, engine
}

func (s *Server) registerRoutes(engine *gin.Engine) {
	requireAuth := RequireAuth(s.auth, s.blacklist)
	requireAdmin := RequireAdmin()

	api := engine.Group("/api")
	{
		api.GET("/health", s.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", s.Register)
			authGroup.POST("/login", s.Login)
			authGroup.POST("/logout", requireAuth, s.Logout)
			authGroup.POST("/forgot-password", s.ForgotPassword)
			authGroup.POST("/reset-password/:token", s.ResetPassword)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("/me", s.GetProfile)
			users.PUT("/me", s.UpdateProfile)
			users.GET("/", requireAdmin, s.ListUsers)
			users.DELETE("/:id", requireAdmin, s.DeactivateUser)
		}

		categories := api.Group("/categories")
		{
			categories.GET("/", s.ListCategories)
			categories.GET("/:id", s.GetCategory)
			categories.POST("/", requireAuth, requireAdmin, s.CreateCategory)
			categories.PUT("/:id", requireAuth, requireAdmin, s.UpdateCategory)
			categories.DELETE("/:id", requireAuth, requireAdmin, s.DeleteCategory)
		}

		products := api.Group("/products")
		{
			products.GET("/", s.ListProducts)
			products.GET("/:id", s.GetProduct)
			products.POST("/", requireAuth, requireAdmin, s.CreateProduct)
			products.PUT("/:id", requireAuth, requireAdmin, s.UpdateProduct)
			products.DELETE("/:id", requireAuth, requireAdmin, s.DeleteProduct)
		}

		cart := api.Group("/cart")
		cart.Use(requireAuth)
		{
			cart.GET("/", s.GetCart)
			cart.POST("/items", s.AddToCart)
			cart.PUT("/items/:lineId", s.UpdateCartLine)
			cart.DELETE("/items/:lineId", s.RemoveFromCart)
			cart.DELETE("/clear", s.ClearCart)
		}

		orders := api.Group("/orders")
		orders.Use(requireAuth)
		{
			orders.POST("/", s.PlaceOrder)
			orders.GET("/", s.ListMyOrders)
			orders.GET("/:id", s.GetMyOrder)
			orders.PUT("/:id/cancel", s.CancelOrder)
		}

		admin := api.Group("/admin")
		admin.Use(requireAuth, requireAdmin)
		{
			admin.GET("/orders", s.ListAllOrders)
			admin.PUT("/orders/:id/status", s.UpdateOrderStatus)
		}
	}
}
