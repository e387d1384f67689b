package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"gst-reconciliation-engine/backend/internal/report"
	"gst-reconciliation-engine/backend/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	Store *store.Store
	Log   *logrus.Logger
}

func NewExportHandler(s *store.Store, log *logrus.Logger) *ExportHandler {
	return &ExportHandler{Store: s, Log: log}
}

// Export streams the published reconciliation as an Excel workbook.
func (h *ExportHandler) Export(c echo.Context) error {
	rs, err := h.Store.Published()
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no reconciliation results found"})
	}

	f, err := report.Workbook(rs)
	if err != nil {
		h.Log.WithError(err).Error("failed to build export workbook")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build export"})
	}

	c.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", report.Filename(rs.ReconciledAt)))
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}
