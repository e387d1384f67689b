package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gst-reconciliation-engine/backend/internal/models"
	"gst-reconciliation-engine/backend/internal/store"
)

type ResultsHandler struct {
	Store *store.Store
}

func NewResultsHandler(s *store.Store) *ResultsHandler {
	return &ResultsHandler{Store: s}
}

// Summary returns the currently published summary, or 404 before any run.
func (h *ResultsHandler) Summary(c echo.Context) error {
	rs, err := h.Store.Published()
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no reconciliation results found"})
	}
	return c.JSON(http.StatusOK, rs.Summary)
}

// Matches returns the currently published match list, optionally filtered by
// match status.
func (h *ResultsHandler) Matches(c echo.Context) error {
	rs, err := h.Store.Published()
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no reconciliation results found"})
	}

	status := models.MatchStatus(c.QueryParam("status"))
	if status == "" {
		return c.JSON(http.StatusOK, rs.Matches)
	}
	if !status.IsValid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown match status"})
	}

	filtered := make([]*models.MatchResult, 0, len(rs.Matches))
	for _, m := range rs.Matches {
		if m.Status == status {
			filtered = append(filtered, m)
		}
	}
	return c.JSON(http.StatusOK, filtered)
}
