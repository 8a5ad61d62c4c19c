package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hostel-server/middleware"
	"hostel-server/services"
	ws "hostel-server/websocket"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(ctx context.Context) error

// Options carries the HTTP-level settings.
type Options struct {
	HostelName     string
	SessionCookie  string
	CookieSecure   bool
	SessionTTL     time.Duration
	AllowedOrigins []string
	LoginPerMinute int
}

// Dependencies are the services the handlers call into.
type Dependencies struct {
	Auth         *services.AuthService
	Clients      *services.ClientService
	Rooms        *services.RoomService
	Reservations *services.ReservationService
	Stays        *services.StayService
	Hub          *ws.Hub
	// Health checks reported by GET /health, keyed by component name.
	Health map[string]Pinger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies, opts Options) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.SecurityHeaders(opts.CookieSecure))
	router.Use(middleware.BodyLimit(10 << 20))
	corsConfig := cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler(deps.Health))

	auth := &authHandler{svc: deps.Auth, opts: opts}
	loginLimiter := middleware.NewRateLimiter(opts.LoginPerMinute)
	router.POST("/login", middleware.LoginRateLimit(loginLimiter), auth.login)

	protected := router.Group("")
	protected.Use(middleware.SessionAuth(deps.Auth, opts.SessionCookie))
	{
		protected.POST("/logout", auth.logout)
		protected.POST("/password", auth.changePassword)
		protected.GET("/me", auth.me)

		reservations := &reservationHandler{
			svc:        deps.Reservations,
			stays:      deps.Stays,
			hostelName: opts.HostelName,
		}
		protected.GET("/", reservations.home)
		RegisterReservationRoutes(protected.Group("/reservations"), reservations)
		RegisterClientRoutes(protected.Group("/clients"), deps.Clients)
		RegisterRoomRoutes(protected.Group("/rooms"), deps.Rooms)

		if deps.Hub != nil {
			RegisterRoomBoard(protected, deps.Hub, opts.AllowedOrigins)
		}
	}

	return router
}

func healthHandler(checks map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		components := gin.H{}
		for name, ping := range checks {
			if err := ping(ctx); err != nil {
				components[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{
			"status":     overall,
			"components": components,
			"time":       time.Now().UTC(),
		})
	}
}
