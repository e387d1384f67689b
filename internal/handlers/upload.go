package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"gst-reconciliation-engine/backend/internal/ingest"
	"gst-reconciliation-engine/backend/internal/models"
	"gst-reconciliation-engine/backend/internal/store"
)

type UploadHandler struct {
	Store    *store.Store
	Ingestor *ingest.Ingestor
	MaxSize  int64 // max file size in bytes
	Log      *logrus.Logger
}

func NewUploadHandler(s *store.Store, ing *ingest.Ingestor, maxSize int64, log *logrus.Logger) *UploadHandler {
	return &UploadHandler{Store: s, Ingestor: ing, MaxSize: maxSize, Log: log}
}

// Upload ingests one spreadsheet into the partition named by the path.
// Valid rows are accepted even when others fail; the response reports both.
func (h *UploadHandler) Upload(c echo.Context) error {
	recordType, err := models.ParseRecordType(c.Param("recordType"), false)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no file provided"})
	}
	if !ingest.AllowedExtension(file.Filename) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file must be Excel (.xlsx, .xls) or CSV (.csv)"})
	}
	if file.Size > h.MaxSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("file exceeds maximum size of %d bytes", h.MaxSize),
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to open uploaded file"})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.MaxSize+1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read uploaded file"})
	}
	if int64(len(data)) > h.MaxSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("file exceeds maximum size of %d bytes", h.MaxSize),
		})
	}

	records, result, err := h.Ingestor.IngestFile(c.Request().Context(), recordType, data, file.Filename)
	if err != nil {
		var mappingErr *ingest.ColumnMappingError
		if errors.As(err, &mappingErr) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":           mappingErr.Error(),
				"missing_columns": mappingErr.Missing,
			})
		}
		var formatErr *ingest.FileFormatError
		if errors.As(err, &formatErr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": formatErr.Error()})
		}
		h.Log.WithError(err).Error("upload failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to process file"})
	}

	h.Store.Append(records...)

	return c.JSON(http.StatusOK, result)
}
