package httpserver

import (
	"net/http"
	"strings"

	"github.com/emberwatch/emberwatch/internal/application/services"
	"github.com/emberwatch/emberwatch/internal/core/domain/feature"
	"github.com/emberwatch/emberwatch/internal/core/ports"
	"github.com/emberwatch/emberwatch/internal/infrastructure/httpserver/helpers"
	"github.com/emberwatch/emberwatch/internal/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// aiSuggestedFix returns an AI-generated suggestion for understanding or
// resolving an event. The reply is cached per issue group, so new events of
// the same group share the response.
func (s *Server) aiSuggestedFix(c echo.Context) error {
	if !s.config.AIEnabled {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid project ID")
	}
	eventID := strings.ToLower(strings.ReplaceAll(c.Param("event_id"), "-", ""))
	if !utils.IsEventID(eventID) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event ID")
	}

	orgID, err := helpers.GetOrgIDFromContext(c)
	if err != nil {
		return err
	}
	userID, err := helpers.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	flagContext := &feature.FeatureFlagContext{OrgID: orgID, UserID: userID}
	if enabled, err := s.featureSvc.IsFeatureEnabled(ctx, services.OpenAISuggestionFlag, flagContext); err != nil || !enabled {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	ev, err := s.eventStore.GetEventByID(ctx, projectID, eventID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if ev == nil {
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	}

	// Check the provider access policy before any event data leaves
	switch policy := s.policyResolver.Resolve(ctx, orgID); policy {
	case ports.PolicySubprocessor:
		return c.JSON(http.StatusForbidden, map[string]string{"restriction": string(ports.PolicySubprocessor)})
	case ports.PolicyIndividualConsent:
		if c.QueryParam("consent") != "yes" {
			return c.JSON(http.StatusForbidden, map[string]string{"restriction": string(ports.PolicyIndividualConsent)})
		}
	case ports.PolicyAllowed:
	default:
		if s.logger != nil {
			s.logger.WithField("policy", policy).Warn("unknown AI access policy state")
		}
	}

	suggestion, err := s.suggestionSvc.Suggest(ctx, ev)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"suggestion": suggestion})
}
