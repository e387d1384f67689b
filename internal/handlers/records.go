package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"gst-reconciliation-engine/backend/internal/ingest"
	"gst-reconciliation-engine/backend/internal/models"
	"gst-reconciliation-engine/backend/internal/store"
)

type RecordsHandler struct {
	Store *store.Store
	Log   *logrus.Logger
}

func NewRecordsHandler(s *store.Store, log *logrus.Logger) *RecordsHandler {
	return &RecordsHandler{Store: s, Log: log}
}

// manualEntry is one hand-keyed record. Amount fields accept either JSON
// numbers or strings so the same payload works from forms and scripts.
type manualEntry struct {
	GSTIN         string `json:"gstin"`
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	InvoiceAmount any    `json:"invoice_amount"`
	CGST          any    `json:"cgst"`
	SGST          any    `json:"sgst"`
	IGST          any    `json:"igst"`
	VendorName    string `json:"vendor_name"`
}

// manualColumns lays the manual-entry fields out as a synthetic row so the
// exact same normalizer validates manual and uploaded records.
var manualColumns = ingest.ColumnMap{
	ingest.FieldGSTIN:         0,
	ingest.FieldInvoiceNumber: 1,
	ingest.FieldInvoiceDate:   2,
	ingest.FieldInvoiceAmount: 3,
	ingest.FieldCGST:          4,
	ingest.FieldSGST:          5,
	ingest.FieldIGST:          6,
	ingest.FieldVendorName:    7,
}

// Create accepts a single manually entered record. On validation failure it
// returns every field error at once, not just the first.
func (h *RecordsHandler) Create(c echo.Context) error {
	recordType, err := models.ParseRecordType(c.Param("recordType"), false)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var entry manualEntry
	if err := c.Bind(&entry); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	row := []string{
		entry.GSTIN,
		entry.InvoiceNumber,
		entry.InvoiceDate,
		cellValue(entry.InvoiceAmount),
		cellValue(entry.CGST),
		cellValue(entry.SGST),
		cellValue(entry.IGST),
		entry.VendorName,
	}

	record, fieldErrs := ingest.NormalizeRow(recordType, manualColumns, row, 0)
	if len(fieldErrs) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": fieldErrs})
	}

	h.Store.Append(record)
	return c.JSON(http.StatusCreated, record)
}

// List returns a partition's records in insertion order; ALL returns both.
func (h *RecordsHandler) List(c echo.Context) error {
	recordType, err := models.ParseRecordType(c.Param("recordType"), true)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, h.Store.List(recordType))
}

// Clear hard-deletes a partition (or everything). Any published
// reconciliation results are discarded in the same operation.
func (h *RecordsHandler) Clear(c echo.Context) error {
	recordType, err := models.ParseRecordType(c.Param("recordType"), true)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	deleted := h.Store.Clear(recordType)
	h.Log.WithFields(logrus.Fields{"record_type": recordType, "deleted": deleted}).Info("records cleared")

	return c.JSON(http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("Deleted %d records", deleted),
		"deleted_count": deleted,
	})
}

func cellValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
