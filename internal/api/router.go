package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/availability"
	availabilityHttp "github.com/nekogravitycat/stadium-booking-backend/internal/availability/http"
	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/stadium-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/stadium-booking-backend/internal/file"
	fileHttp "github.com/nekogravitycat/stadium-booking-backend/internal/file/http"
	"github.com/nekogravitycat/stadium-booking-backend/internal/logging"
	"github.com/nekogravitycat/stadium-booking-backend/internal/metrics"
	"github.com/nekogravitycat/stadium-booking-backend/internal/notification"
	notificationHttp "github.com/nekogravitycat/stadium-booking-backend/internal/notification/http"
	"github.com/nekogravitycat/stadium-booking-backend/internal/ratelimit"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
	stadiumHttp "github.com/nekogravitycat/stadium-booking-backend/internal/stadium/http"
	"github.com/nekogravitycat/stadium-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/stadium-booking-backend/internal/user/http"
)

// Config holds the services and settings the router is assembled from.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       zerolog.Logger
	IPLimiter    *ratelimit.IPLimiter

	UserService         user.Service
	StadiumService      stadium.Service
	BookingService      booking.Service
	Availability        *availability.Service
	NotificationService notification.Service
	FileService         file.Service
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (logging, metrics, rate limit, CORS, auth) and registering routes for each module.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	// - logging: Request-scoped zerolog logger and one access line per request.
	// - metrics: Latency histogram per route template.
	r.Use(gin.Recovery(), logging.Middleware(cfg.Logger), metrics.Middleware())
	if cfg.IPLimiter != nil {
		r.Use(cfg.IPLimiter.Middleware())
	}

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000", // Web client
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// activeUser: Further checks the account behind the token is still active.
	activeUser := RequireActiveUser(cfg.UserService)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewUserHandler(cfg.UserService, cfg.JWTManager)
	stadiumHandler := stadiumHttp.NewHandler(cfg.StadiumService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.Availability)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	notificationHandler := notificationHttp.NewHandler(cfg.NotificationService)
	fileHandler := fileHttp.NewHandler(cfg.FileService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		stadiumHttp.RegisterRoutes(v1, stadiumHandler, authMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, activeUser)
		notificationHttp.RegisterRoutes(v1, notificationHandler, authMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
