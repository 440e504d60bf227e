package router

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/appointment"
	"github.com/Alijeyrad/medibook_backend/internal/service/booking"
	"github.com/Alijeyrad/medibook_backend/internal/service/doctor"
	"github.com/Alijeyrad/medibook_backend/pkg/realtime"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

const readinessTimeout = 2 * time.Second

type Params struct {
	fx.In

	Cfg            *config.Config
	Redis          *redis.Client
	DB             *repo.Client
	Realtime       *realtime.Broadcaster
	DoctorSvc      doctor.Service
	BookingSvc     booking.Service
	AppointmentSvc appointment.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	bc := r.p.Cfg.Booking
	session := middleware.BookingSession(middleware.SessionConfig{
		CookieName: bc.SessionCookie,
		Secure:     bc.SecureCookie,
		MaxAge:     time.Duration(bc.PendingTTLMinutes) * time.Minute,
	})
	limiter := middleware.NewLimiterWithRedis(r.p.Redis, bc.RateLimit)

	// 3. Initialize Handlers
	bookingH := handler.NewBookingHandler(r.p.BookingSvc)
	doctorH := handler.NewDoctorHandler(r.p.DoctorSvc, r.p.AppointmentSvc)
	appointmentH := handler.NewAppointmentHandler(r.p.AppointmentSvc)
	realtimeH := handler.NewRealtimeHandler(r.p.Realtime)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerBookingRoutes(api, bookingH, session, limiter)
	r.registerDoctorRoutes(api, doctorH)
	r.registerAppointmentRoutes(api, appointmentH)
	r.registerRealtimeRoutes(api, realtimeH)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New(healthcheck.Config{
		Probe: r.ready,
	}))
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

// ready reports whether Postgres and Redis both answer.
func (r *Router) ready(c fiber.Ctx) bool {
	ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
	defer cancel()

	if err := r.p.DB.Ping(ctx); err != nil {
		return false
	}
	return r.p.Redis.Ping(ctx).Err() == nil
}
