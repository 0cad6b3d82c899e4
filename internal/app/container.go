package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/stadium-booking-backend/internal/api"
	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/availability"
	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/file"
	"github.com/nekogravitycat/stadium-booking-backend/internal/notification"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/stadium-booking-backend/internal/ratelimit"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
	"github.com/nekogravitycat/stadium-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	PasswordCost int
	Logger       zerolog.Logger
	// Location decides which calendar day is "today" for booking validation.
	Location *time.Location
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time

	// Redis is optional; nil disables the per-user booking limit.
	Redis             *redis.Client
	BookingRateLimit  int
	BookingRateWindow time.Duration
	APIRateRPS        float64
	APIRateBurst      int

	// Broker is optional; nil keeps notifications in the inbox only.
	Broker    notification.JSONPublisher
	UploadDir string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Dispatcher *notification.Dispatcher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.PasswordCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Stadium Module
	stadiumRepo := stadium.NewPgxRepository(cfg.DBPool)
	stadiumService := stadium.NewService(stadiumRepo, cfg.Logger,
		stadium.WithLocation(cfg.Location),
		stadium.WithClock(cfg.Now),
	)

	// Availability reads stadiums and bookings straight from their repositories.
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	availabilityService := availability.NewService(stadiumRepo, bookingRepo,
		availability.WithLocation(cfg.Location),
		availability.WithClock(cfg.Now),
	)

	// Notification Module
	notificationRepo := notification.NewPgxRepository(cfg.DBPool)
	notificationService := notification.NewService(notificationRepo)
	sinks := []notification.Sink{notification.NewStoreSink(notificationRepo)}
	if cfg.Broker != nil {
		sinks = append(sinks, notification.NewBrokerSink(cfg.Broker))
	}
	dispatcher := notification.NewDispatcher(cfg.Logger, 5*time.Second, sinks...)

	// Booking Module
	limiter := ratelimit.NewLimiter(cfg.Redis, "booking:create", cfg.BookingRateLimit, cfg.BookingRateWindow)
	bookingService := booking.NewService(
		bookingRepo,
		stadiumRepo,
		availability.NewGuard(availabilityService),
		dispatcher,
		limiter,
	)

	// File Module
	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init file storage: %w", err)
	}
	fileService := file.NewService(file.NewPgxRepository(cfg.DBPool), store, cfg.Logger)

	// API Router Config
	routerParams := api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Logger:              cfg.Logger,
		IPLimiter:           ratelimit.NewIPLimiter(cfg.APIRateRPS, cfg.APIRateBurst),
		UserService:         userService,
		StadiumService:      stadiumService,
		BookingService:      bookingService,
		Availability:        availabilityService,
		NotificationService: notificationService,
		FileService:         fileService,
		JWTManager:          jwtManager,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Dispatcher: dispatcher,
	}, nil
}
