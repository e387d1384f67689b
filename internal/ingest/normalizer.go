package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gst-reconciliation-engine/backend/internal/models"
)

// FieldError is one field-level validation failure. Manual entry returns the
// complete list so the caller can fix every problem at once.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// RowError is a FieldError attributed to a spreadsheet row.
type RowError struct {
	RowIndex int    `json:"row_index"`
	Field    string `json:"field"`
	Reason   string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s %s", e.RowIndex, e.Field, e.Reason)
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// excelEpoch is day zero of spreadsheet serial dates. Using Dec 30 1899
// absorbs the historical 1900 leap-year bug shared by Excel and LibreOffice.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// NormalizeRow validates and coerces one raw row into a canonical record.
// It never stops at the first problem: every failing field is reported, and
// a record is returned only when the row is clean.
func NormalizeRow(recordType models.RecordType, cols ColumnMap, row []string, sourceRow int) (*models.InvoiceRecord, []FieldError) {
	var errs []FieldError
	fail := func(field, reason string) {
		errs = append(errs, FieldError{Field: field, Reason: reason})
	}

	gstin := strings.ToUpper(cell(cols, row, FieldGSTIN))
	if reason := validateGSTIN(gstin); reason != "" {
		fail(FieldGSTIN, reason)
	}

	invoiceNumber := cell(cols, row, FieldInvoiceNumber)
	if invoiceNumber == "" {
		fail(FieldInvoiceNumber, "is required")
	}

	var invoiceDate models.Date
	if raw := cell(cols, row, FieldInvoiceDate); raw == "" {
		fail(FieldInvoiceDate, "is required")
	} else if d, err := ParseDate(raw); err != nil {
		fail(FieldInvoiceDate, err.Error())
	} else {
		invoiceDate = d
	}

	var amount decimal.Decimal
	if raw := cell(cols, row, FieldInvoiceAmount); raw == "" {
		fail(FieldInvoiceAmount, "is required")
	} else if a, err := ParseAmount(raw); err != nil {
		fail(FieldInvoiceAmount, "is not a valid amount")
	} else if !a.IsPositive() {
		fail(FieldInvoiceAmount, "must be greater than zero")
	} else {
		amount = a
	}

	taxes := make(map[string]decimal.Decimal, 3)
	for _, field := range []string{FieldCGST, FieldSGST, FieldIGST} {
		raw := cell(cols, row, field)
		if raw == "" {
			taxes[field] = decimal.Zero
			continue
		}
		t, err := ParseAmount(raw)
		if err != nil {
			fail(field, "is not a valid amount")
			continue
		}
		if t.IsNegative() {
			fail(field, "cannot be negative")
			continue
		}
		taxes[field] = t
	}

	if len(errs) > 0 {
		return nil, errs
	}

	cgst, sgst, igst := taxes[FieldCGST], taxes[FieldSGST], taxes[FieldIGST]
	return &models.InvoiceRecord{
		ID:            uuid.New().String(),
		RecordType:    recordType,
		GSTIN:         gstin,
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   invoiceDate,
		InvoiceAmount: amount,
		CGST:          cgst,
		SGST:          sgst,
		IGST:          igst,
		// Never trusted from the source file.
		TotalTax:   cgst.Add(sgst).Add(igst),
		VendorName: cell(cols, row, FieldVendorName),
		SourceRow:  sourceRow,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// validateGSTIN checks the canonical form of an already trimmed, uppercased
// GSTIN. Beyond length and character class, only the two-digit state code is
// enforced; PAN-structure checksums reject too many legacy registrations.
func validateGSTIN(gstin string) string {
	if len(gstin) != 15 {
		return "must be exactly 15 characters"
	}
	for _, r := range gstin {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "may only contain letters and digits"
		}
	}
	if gstin[0] < '0' || gstin[0] > '9' || gstin[1] < '0' || gstin[1] > '9' {
		return "must start with a two-digit state code"
	}
	return ""
}

// ParseDate accepts ISO dates, the two day-first forms common in Indian
// ledger exports, and raw spreadsheet serial numbers.
func ParseDate(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Date{Time: t}, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial > 0 && serial < 2958466 { // through year 9999
			return models.Date{Time: excelEpoch.AddDate(0, 0, int(serial))}, nil
		}
	}
	return models.Date{}, fmt.Errorf("is not a recognized date (use YYYY-MM-DD, DD/MM/YYYY or DD-MM-YYYY)")
}

// ParseAmount parses a monetary cell, shrugging off currency symbols and
// thousands separators ("₹1,50,000.00", "Rs. 1,000.50").
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ',', r == ' ':
			return -1
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		default:
			return -1 // currency symbols
		}
	}, strings.TrimSpace(s))
	// Currency markers like "Rs." and "INR" sit at the edges; trim them off
	// there, but interior letters mean the cell is not a number.
	cleaned = strings.TrimFunc(cleaned, func(r rune) bool {
		return (r < '0' || r > '9') && r != '-'
	})
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(cleaned)
}

func cell(cols ColumnMap, row []string, field string) string {
	idx, ok := cols[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
