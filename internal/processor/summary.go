package processor

import (
	"github.com/shopspring/decimal"

	"gst-reconciliation-engine/backend/internal/models"
)

// Summarize reduces a result list to the aggregate compliance metrics in a
// single pass. Amount and tax differences are summed across every result,
// including MATCHED ones whose diffs sit inside tolerance but are not zero.
func Summarize(results []*models.MatchResult) *models.ReconciliationSummary {
	s := &models.ReconciliationSummary{
		TotalAmountDifference: decimal.Zero,
		TotalTaxDifference:    decimal.Zero,
	}
	for _, r := range results {
		switch r.Status {
		case models.StatusMatched:
			s.MatchedRecords++
		case models.StatusAmountMismatch:
			s.AmountMismatches++
		case models.StatusTaxMismatch:
			s.TaxMismatches++
		case models.StatusUnmatchedBooks:
			s.UnmatchedBooksRecords++
		case models.StatusUnmatched2B:
			s.Unmatched2BRecords++
		}
		if r.Books != nil {
			s.TotalBooksRecords++
		}
		if r.TwoB != nil {
			s.Total2BRecords++
		}
		s.TotalAmountDifference = s.TotalAmountDifference.Add(r.InvoiceAmountDiff)
		s.TotalTaxDifference = s.TotalTaxDifference.Add(r.TotalTaxDiff)
	}
	return s
}
