package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"launchpad/internal/auth"
	"launchpad/internal/catalog"
	"launchpad/internal/telemetry"
)

// RateLimit caps requests per client IP within a window
type RateLimit struct {
	Max    int
	Window time.Duration
}

// Options wires the server to its collaborators
type Options struct {
	Service       *catalog.Service
	Authenticator *auth.Authenticator
	Logger        *logrus.Logger
	CORSOrigins   string
	RateLimit     RateLimit
	StrictLimit   RateLimit
	// Ping reports storage health on /health; nil means always healthy
	Ping func(ctx context.Context) error
}

type Server struct {
	app    *fiber.App
	svc    *catalog.Service
	auth   *auth.Authenticator
	logger logrus.FieldLogger
	ping   func(ctx context.Context) error
}

func NewServer(opts Options) *Server {
	s := &Server{
		svc:    opts.Service,
		auth:   opts.Authenticator,
		logger: opts.Logger,
		ping:   opts.Ping,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Launchpad API",
		ErrorHandler:          errorHandler(opts.Logger),
		DisableStartupMessage: true,
		Immutable:             true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Output: opts.Logger.Out,
		Format: `{"time":"${time}","status":${status},"latency":"${latency}","method":"${method}","path":"${path}","ip":"${ip}"}` + "\n",
	}))
	origins := opts.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(requestMetrics())

	app.Get("/health", s.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", rateLimiter(opts.RateLimit))
	strict := rateLimiter(opts.StrictLimit)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/challenge", strict, s.challenge)
	authRoutes.Post("/wallet", strict, s.walletLogin)

	projects := api.Group("/projects")
	projects.Get("/", s.listProjects)
	projects.Get("/featured/list", s.featuredProjects)
	projects.Get("/token/:tokenMint", s.projectByMint)
	projects.Get("/:id", s.projectByID)
	projects.Post("/", strict, s.walletMiddleware(), s.submitProject)
	projects.Get("/:id/favorite", s.walletMiddleware(), s.favoriteState)
	projects.Post("/:id/favorite", s.walletMiddleware(), s.toggleFavorite)

	admin := api.Group("/admin", s.adminMiddleware())
	admin.Get("/projects", s.adminListProjects)
	admin.Patch("/projects/:id/status", s.updateStatus)
	admin.Delete("/projects/:id", s.deleteProject)
	admin.Get("/stats", s.stats)

	metrics := api.Group("/metrics")
	metrics.Get("/trending", s.trending)
	metrics.Get("/project/:id", s.projectMetrics)
	metrics.Post("/project/:id", s.adminMiddleware(), s.reportMetrics)

	s.app = app
	return s
}

// App exposes the fiber application for in-process requests
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Start(port string) error {
	return s.app.Listen(":" + port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.ping != nil {
		if err := s.ping(c.UserContext()); err != nil {
			s.logger.WithError(err).Warn("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func rateLimiter(cfg RateLimit) fiber.Handler {
	if cfg.Max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	window := cfg.Window
	if window <= 0 {
		window = 15 * time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later",
			})
		},
	})
}

func requestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status = statusFor(err)
		}
		telemetry.HTTPRequests.WithLabelValues(c.Method(), c.Route().Path, strconv.Itoa(status)).Inc()
		return err
	}
}
