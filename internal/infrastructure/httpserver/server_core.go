package httpserver

import (
	"time"

	"github.com/emberwatch/emberwatch/internal/core/ports"
	customMiddleware "github.com/emberwatch/emberwatch/internal/infrastructure/httpserver/middleware"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	// AIEnabled reflects whether a provider API key is configured; the
	// suggest endpoint 404s without it.
	AIEnabled bool
}

type ServerDeps struct {
	EventStore         ports.EventStore
	FeatureFlagService ports.FeatureFlagService
	SuggestionService  ports.SuggestionService
	PolicyResolver     ports.PolicyResolver
	RateLimiter        ports.RateLimiter
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	eventStore     ports.EventStore
	featureSvc     ports.FeatureFlagService
	suggestionSvc  ports.SuggestionService
	policyResolver ports.PolicyResolver
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, jwtSecret string, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		eventStore:     deps.EventStore,
		featureSvc:     deps.FeatureFlagService,
		suggestionSvc:  deps.SuggestionService,
		policyResolver: deps.PolicyResolver,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.RateLimiter,
			logger,
			jwtSecret,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
