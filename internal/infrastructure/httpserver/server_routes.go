package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/0")

	protected := api.Group("")
	protected.Use(s.middleware.Auth.RequireToken())

	// The suggest endpoint is the only route with its own rate limit; it
	// fronts a paid model API.
	protected.GET("/projects/:project_id/events/:event_id/ai-fix-suggest", s.aiSuggestedFix, s.middleware.RateLimit.Handler())
}
