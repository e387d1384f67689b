// Package report renders a published reconciliation into a downloadable
// Excel workbook: a summary sheet plus the complete, untruncated match list.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gst-reconciliation-engine/backend/internal/models"
)

const (
	summarySheet = "Summary"
	matchesSheet = "Matches"
)

var detailHeader = []string{
	"GSTIN", "Invoice Number", "Match Status", "Vendor Name",
	"Books Date", "2B Date",
	"Books Amount", "2B Amount", "Amount Difference",
	"Books CGST", "2B CGST", "CGST Difference",
	"Books SGST", "2B SGST", "SGST Difference",
	"Books IGST", "2B IGST", "IGST Difference",
	"Total Tax Difference",
}

// Filename returns the timestamped attachment name for an export.
func Filename(t time.Time) string {
	return fmt.Sprintf("gst_reconciliation_%s.xlsx", t.Format("20060102_150405"))
}

// Workbook builds the export document from one published result set. Every
// match appears exactly once in the detail sheet, amounts fixed to two
// decimal places and dates in ISO form.
func Workbook(rs *models.ResultSet) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(matchesSheet); err != nil {
		return nil, err
	}

	if err := writeSummary(f, rs); err != nil {
		return nil, err
	}
	if err := writeMatches(f, rs.Matches); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSummary(f *excelize.File, rs *models.ResultSet) error {
	s := rs.Summary
	rows := [][2]any{
		{"Reconciled At", rs.ReconciledAt.UTC().Format(time.RFC3339)},
		{"Total Books Records", s.TotalBooksRecords},
		{"Total 2B Records", s.Total2BRecords},
		{"Matched", s.MatchedRecords},
		{"Amount Mismatches", s.AmountMismatches},
		{"Tax Mismatches", s.TaxMismatches},
		{"Unmatched (Books)", s.UnmatchedBooksRecords},
		{"Unmatched (2B)", s.Unmatched2BRecords},
		{"Total Amount Difference", s.TotalAmountDifference.StringFixed(2)},
		{"Total Tax Difference", s.TotalTaxDifference.StringFixed(2)},
	}
	for i, row := range rows {
		if err := setRow(f, summarySheet, i+1, row[0], row[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeMatches(f *excelize.File, matches []*models.MatchResult) error {
	header := make([]any, len(detailHeader))
	for i, h := range detailHeader {
		header[i] = h
	}
	if err := setRow(f, matchesSheet, 1, header...); err != nil {
		return err
	}

	for i, m := range matches {
		cells := []any{
			m.GSTIN, m.InvoiceNumber, m.Status.Label(), vendorName(m),
			recordDate(m.Books), recordDate(m.TwoB),
			recordAmount(m.Books, pickAmount), recordAmount(m.TwoB, pickAmount), m.InvoiceAmountDiff.StringFixed(2),
			recordAmount(m.Books, pickCGST), recordAmount(m.TwoB, pickCGST), m.CGSTDiff.StringFixed(2),
			recordAmount(m.Books, pickSGST), recordAmount(m.TwoB, pickSGST), m.SGSTDiff.StringFixed(2),
			recordAmount(m.Books, pickIGST), recordAmount(m.TwoB, pickIGST), m.IGSTDiff.StringFixed(2),
			m.TotalTaxDiff.StringFixed(2),
		}
		if err := setRow(f, matchesSheet, i+2, cells...); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func vendorName(m *models.MatchResult) string {
	if m.Books != nil {
		return m.Books.VendorName
	}
	return ""
}

func recordDate(r *models.InvoiceRecord) string {
	if r == nil {
		return ""
	}
	return r.InvoiceDate.String()
}

func pickAmount(r *models.InvoiceRecord) decimal.Decimal { return r.InvoiceAmount }
func pickCGST(r *models.InvoiceRecord) decimal.Decimal   { return r.CGST }
func pickSGST(r *models.InvoiceRecord) decimal.Decimal   { return r.SGST }
func pickIGST(r *models.InvoiceRecord) decimal.Decimal   { return r.IGST }

func recordAmount(r *models.InvoiceRecord, pick func(*models.InvoiceRecord) decimal.Decimal) string {
	if r == nil {
		return "0.00"
	}
	return pick(r).StringFixed(2)
}
