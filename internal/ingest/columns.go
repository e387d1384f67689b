package ingest

import (
	"fmt"
	"strings"
)

// Canonical field names every downstream component works in.
const (
	FieldGSTIN         = "gstin"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldInvoiceAmount = "invoice_amount"
	FieldCGST          = "cgst"
	FieldSGST          = "sgst"
	FieldIGST          = "igst"
	FieldVendorName    = "vendor_name"
)

// RequiredFields must all resolve for a file to be ingestible.
var RequiredFields = []string{FieldGSTIN, FieldInvoiceNumber, FieldInvoiceDate, FieldInvoiceAmount}

// SynonymTable maps a canonical field to the header spellings that resolve
// to it. The canonical name itself always resolves; entries here are extras.
type SynonymTable map[string][]string

// DefaultSynonyms returns the header spellings seen across real Books and
// GSTR-2B extracts. Callers may extend or replace the table before handing
// it to NewColumnMapper.
func DefaultSynonyms() SynonymTable {
	return SynonymTable{
		FieldGSTIN:         {"gst number", "gst no", "gstin no", "vendor gstin"},
		FieldInvoiceNumber: {"invoice no", "inv no", "bill no", "bill number"},
		FieldInvoiceDate:   {"inv date", "bill date", "date"},
		FieldInvoiceAmount: {"inv amount", "bill amount", "amount", "total amount"},
		FieldCGST:          {"cgst amount"},
		FieldSGST:          {"sgst amount"},
		FieldIGST:          {"igst amount"},
		FieldVendorName:    {"supplier name", "party name", "vendor"},
	}
}

// ColumnMappingError reports every required field that no header resolved to.
type ColumnMappingError struct {
	Missing []string
	Headers []string
}

func (e *ColumnMappingError) Error() string {
	return fmt.Sprintf("missing required columns: %s (file headers: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// ColumnMap is the resolved position of each canonical field in a file.
type ColumnMap map[string]int

// Has reports whether the field was present in the header row.
func (m ColumnMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// ColumnMapper resolves an uploaded header row against a synonym table.
type ColumnMapper struct {
	byNormalized map[string]string // normalized header -> canonical field
}

// NewColumnMapper builds a mapper from the supplied synonym table.
func NewColumnMapper(synonyms SynonymTable) *ColumnMapper {
	m := &ColumnMapper{byNormalized: make(map[string]string)}
	for canonical, names := range synonyms {
		m.byNormalized[normalizeHeader(canonical)] = canonical
		for _, name := range names {
			m.byNormalized[normalizeHeader(name)] = canonical
		}
	}
	// Canonical names always resolve even with a trimmed-down table.
	for _, canonical := range []string{
		FieldGSTIN, FieldInvoiceNumber, FieldInvoiceDate, FieldInvoiceAmount,
		FieldCGST, FieldSGST, FieldIGST, FieldVendorName,
	} {
		if _, ok := m.byNormalized[normalizeHeader(canonical)]; !ok {
			m.byNormalized[normalizeHeader(canonical)] = canonical
		}
	}
	return m
}

// Map resolves a header row. When several columns resolve to the same
// canonical field the leftmost wins and the rest are ignored. Returns a
// ColumnMappingError naming every unresolvable required field.
func (m *ColumnMapper) Map(headers []string) (ColumnMap, error) {
	cols := make(ColumnMap, len(headers))
	for i, h := range headers {
		canonical, ok := m.byNormalized[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, bound := cols[canonical]; bound {
			continue // first match wins
		}
		cols[canonical] = i
	}

	var missing []string
	for _, field := range RequiredFields {
		if !cols.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &ColumnMappingError{Missing: missing, Headers: headers}
	}
	return cols, nil
}

// normalizeHeader lowercases a header cell and strips everything that is not
// a letter or digit, so "GST Number", "gst_number" and "GST-No." compare equal
// modulo the synonym table.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
