package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MatchStatus string

const (
	StatusMatched        MatchStatus = "MATCHED"
	StatusAmountMismatch MatchStatus = "AMOUNT_MISMATCH"
	StatusTaxMismatch    MatchStatus = "TAX_MISMATCH"
	StatusUnmatchedBooks MatchStatus = "UNMATCHED_BOOKS"
	StatusUnmatched2B    MatchStatus = "UNMATCHED_2B"
)

// IsValid reports whether s is one of the five match statuses.
func (s MatchStatus) IsValid() bool {
	switch s {
	case StatusMatched, StatusAmountMismatch, StatusTaxMismatch,
		StatusUnmatchedBooks, StatusUnmatched2B:
		return true
	}
	return false
}

// Label returns the human-readable form used in exports.
func (s MatchStatus) Label() string {
	switch s {
	case StatusMatched:
		return "Matched"
	case StatusAmountMismatch:
		return "Amount Mismatch"
	case StatusTaxMismatch:
		return "Tax Mismatch"
	case StatusUnmatchedBooks:
		return "Unmatched (Books)"
	case StatusUnmatched2B:
		return "Unmatched (2B)"
	}
	return string(s)
}

// MatchResult is the outcome of reconciling one Books record, one 2B record,
// or a lone record with no counterpart. Exactly one of Books/TwoB is nil for
// the UNMATCHED_* statuses; both are set otherwise. All diffs are absolute.
type MatchResult struct {
	GSTIN             string          `json:"gstin"`
	InvoiceNumber     string          `json:"invoice_number"`
	Status            MatchStatus     `json:"match_status"`
	Books             *InvoiceRecord  `json:"books_record,omitempty"`
	TwoB              *InvoiceRecord  `json:"twob_record,omitempty"`
	InvoiceAmountDiff decimal.Decimal `json:"invoice_amount_diff"`
	CGSTDiff          decimal.Decimal `json:"cgst_diff"`
	SGSTDiff          decimal.Decimal `json:"sgst_diff"`
	IGSTDiff          decimal.Decimal `json:"igst_diff"`
	TotalTaxDiff      decimal.Decimal `json:"total_tax_diff"`
}

// ReconciliationSummary aggregates one published MatchResult set.
type ReconciliationSummary struct {
	TotalBooksRecords     int             `json:"total_books_records"`
	Total2BRecords        int             `json:"total_2b_records"`
	MatchedRecords        int             `json:"matched_records"`
	UnmatchedBooksRecords int             `json:"unmatched_books_records"`
	Unmatched2BRecords    int             `json:"unmatched_2b_records"`
	AmountMismatches      int             `json:"amount_mismatches"`
	TaxMismatches         int             `json:"tax_mismatches"`
	TotalAmountDifference decimal.Decimal `json:"total_amount_difference"`
	TotalTaxDifference    decimal.Decimal `json:"total_tax_difference"`
}

// ResultSet is one complete reconciliation outcome, published atomically.
type ResultSet struct {
	Matches      []*MatchResult         `json:"matches"`
	Summary      *ReconciliationSummary `json:"summary"`
	ReconciledAt time.Time              `json:"reconciled_at"`
}
