package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RecordType string

const (
	RecordTypeBooks RecordType = "BOOKS"
	RecordType2B    RecordType = "2B"
	RecordTypeAll   RecordType = "ALL"
)

// ParseRecordType resolves a path parameter to a record type. ALL is only
// accepted when allowAll is set (list and clear; uploads target one side).
func ParseRecordType(s string, allowAll bool) (RecordType, error) {
	switch RecordType(strings.ToUpper(strings.TrimSpace(s))) {
	case RecordTypeBooks:
		return RecordTypeBooks, nil
	case RecordType2B:
		return RecordType2B, nil
	case RecordTypeAll:
		if allowAll {
			return RecordTypeAll, nil
		}
	}
	if allowAll {
		return "", fmt.Errorf("record_type must be '2B', 'BOOKS', or 'ALL'")
	}
	return "", fmt.Errorf("record_type must be '2B' or 'BOOKS'")
}

// Date is a calendar date with no time component. It marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// InvoiceRecord is one normalized ledger line from either source.
// Records are immutable once accepted.
type InvoiceRecord struct {
	ID            string          `json:"id"`
	RecordType    RecordType      `json:"record_type"`
	GSTIN         string          `json:"gstin"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   Date            `json:"invoice_date"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	CGST          decimal.Decimal `json:"cgst"`
	SGST          decimal.Decimal `json:"sgst"`
	IGST          decimal.Decimal `json:"igst"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	VendorName    string          `json:"vendor_name,omitempty"`
	SourceRow     int             `json:"source_row"`
	UploadedAt    time.Time       `json:"uploaded_at"`
}

// MatchKey identifies records that should be paired across the two sides.
type MatchKey struct {
	GSTIN    string
	Fragment string
}

// KeyFragment derives the matching form of an invoice number: uppercased
// with every non-alphanumeric character stripped, so "inv-001" and
// "INV 001" pair up.
func KeyFragment(invoiceNumber string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(invoiceNumber) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Key returns the pairing key for this record.
func (r *InvoiceRecord) Key() MatchKey {
	return MatchKey{GSTIN: r.GSTIN, Fragment: KeyFragment(r.InvoiceNumber)}
}
