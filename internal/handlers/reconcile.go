package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"gst-reconciliation-engine/backend/internal/models"
	"gst-reconciliation-engine/backend/internal/processor"
	"gst-reconciliation-engine/backend/internal/store"
)

type ReconcileHandler struct {
	Store  *store.Store
	Engine *processor.Engine
	Log    *logrus.Logger
}

func NewReconcileHandler(s *store.Store, engine *processor.Engine, log *logrus.Logger) *ReconcileHandler {
	return &ReconcileHandler{Store: s, Engine: engine, Log: log}
}

// Reconcile runs the match engine over a snapshot of both partitions and
// atomically publishes the new result set. Only one run may be in flight;
// a concurrent request gets 409 instead of queueing.
func (h *ReconcileHandler) Reconcile(c echo.Context) error {
	release, err := h.Store.BeginRun()
	if err != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "reconciliation already in progress"})
	}
	defer release()

	started := time.Now()
	snap := h.Store.Snapshot()
	matches := h.Engine.Reconcile(snap.Books, snap.TwoB)
	resultSet := &models.ResultSet{
		Matches:      matches,
		Summary:      processor.Summarize(matches),
		ReconciledAt: time.Now().UTC(),
	}

	if err := h.Store.Publish(snap, resultSet); err != nil {
		if errors.Is(err, store.ErrStaleData) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		h.Log.WithError(err).Error("failed to publish reconciliation results")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to publish results"})
	}

	h.Log.WithFields(logrus.Fields{
		"books":    len(snap.Books),
		"twob":     len(snap.TwoB),
		"matches":  len(matches),
		"duration": time.Since(started).String(),
	}).Info("reconciliation completed")

	return c.JSON(http.StatusOK, map[string]any{
		"message":           "Reconciliation completed successfully",
		"matches_processed": len(matches),
	})
}
