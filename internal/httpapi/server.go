package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rosellea-backend/internal/auth"
	"rosellea-backend/internal/domain"
	"rosellea-backend/internal/repository"
	"rosellea-backend/internal/router"
	"rosellea-backend/internal/service"
)

type Services struct {
	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService
	Users   *service.UserService
	Contact *service.ContactService
	Guard   *auth.Guard

	// Store is pinged by the health check. Cache is optional.
	Store repository.Pinger
	Cache repository.Pinger
}

type Options struct {
	Env          string
	Version      string
	CORSOrigins  []string
	MaxBodyBytes int64
}

type Server struct {
	engine *gin.Engine
	api    *router.Router
	svc    Services
	opts   Options
	log    zerolog.Logger
}

func NewServer(svc Services, opts Options, log zerolog.Logger) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	s := &Server{
		engine: gin.New(),
		api:    router.New(log),
		svc:    svc,
		opts:   opts,
		log:    log,
	}
	s.api.SetErrorHandler(s.writeError)

	corsCfg := cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(opts.CORSOrigins) == 0 {
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	s.engine.Use(cors.New(corsCfg))
	s.engine.Use(requestID(), requestLogger(log), bodyLimit(opts.MaxBodyBytes, s.writeError))

	s.registerRoutes()
	s.engine.Any("/*path", s.api.Dispatch)
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

// Routes lists the dispatch table in match order.
func (s *Server) Routes() []string { return s.api.Routes() }

// registerRoutes declares every endpoint. Order matters: the first matching
// pattern wins, so literal routes go before parameterized siblings.
func (s *Server) registerRoutes() {
	authn := s.svc.Guard.Authenticate

	users := router.New(s.log)
	users.POST("/register", s.register)
	users.POST("/login", s.login)
	users.GET("/profile", authn, s.getProfile)
	users.PUT("/profile", authn, s.updateProfile)

	products := router.New(s.log)
	products.GET("", s.listProducts)
	products.GET("/search", s.searchProducts)
	products.GET("/category/:category", s.productsByCategory)
	products.GET("/:id", s.getProduct)

	cart := router.New(s.log)
	cart.GET("", authn, s.getCart)
	cart.POST("/add", authn, s.addToCart)
	cart.PUT("/item/:id", authn, s.updateCartItem)
	cart.DELETE("/item/:id", authn, s.removeCartItem)
	cart.DELETE("/clear", authn, s.clearCart)

	orders := router.New(s.log)
	orders.GET("", authn, s.listOrders)
	orders.POST("", authn, s.createOrder)
	orders.PUT("/:id/payment-status", authn, s.svc.Guard.Authorize(domain.RoleAdmin), s.updatePaymentStatus)
	orders.PUT("/:id/cancel", authn, s.cancelOrder)
	orders.PUT("/:id/status", authn, s.cancelOrder)
	orders.GET("/:id", authn, s.getOrder)

	contact := router.New(s.log)
	contact.POST("", s.submitContact)

	s.api.GET("/api/health", s.health)
	s.api.Mount("/api/auth", users)
	s.api.Mount("/api/products", products)
	s.api.Mount("/api/cart", cart)
	s.api.Mount("/api/orders", orders)
	s.api.Mount("/api/contact", contact)
}
