package processor

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gst-reconciliation-engine/backend/internal/models"
)

const testGSTIN = "27AAAAA0000A1Z5"

func rec(recordType models.RecordType, gstin, invoice string, amount, cgst, sgst, igst string) *models.InvoiceRecord {
	c := decimal.RequireFromString(cgst)
	s := decimal.RequireFromString(sgst)
	i := decimal.RequireFromString(igst)
	return &models.InvoiceRecord{
		ID:            invoice + "-" + string(recordType),
		RecordType:    recordType,
		GSTIN:         gstin,
		InvoiceNumber: invoice,
		InvoiceDate:   models.NewDate(2024, time.January, 15),
		InvoiceAmount: decimal.RequireFromString(amount),
		CGST:          c,
		SGST:          s,
		IGST:          i,
		TotalTax:      c.Add(s).Add(i),
	}
}

func books(invoice, amount, cgst, sgst, igst string) *models.InvoiceRecord {
	return rec(models.RecordTypeBooks, testGSTIN, invoice, amount, cgst, sgst, igst)
}

func twob(invoice, amount, cgst, sgst, igst string) *models.InvoiceRecord {
	return rec(models.RecordType2B, testGSTIN, invoice, amount, cgst, sgst, igst)
}

func testEngine() *Engine {
	return NewEngine(decimal.NewFromInt(1), decimal.NewFromInt(1))
}

func TestReconcile_MatchedWithinTolerance(t *testing.T) {
	results := testEngine().Reconcile(
		[]*models.InvoiceRecord{books("INV001", "1000.00", "90", "90", "0")},
		[]*models.InvoiceRecord{twob("INV001", "1000.50", "90", "90", "0")},
	)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	if r.Status != models.StatusMatched {
		t.Errorf("Status = %s, want MATCHED", r.Status)
	}
	if !r.InvoiceAmountDiff.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("InvoiceAmountDiff = %s, want 0.50", r.InvoiceAmountDiff)
	}
	if r.Books == nil || r.TwoB == nil {
		t.Error("both records must be present on a paired result")
	}
}

func TestReconcile_AmountMismatch(t *testing.T) {
	results := testEngine().Reconcile(
		[]*models.InvoiceRecord{books("INV001", "1000.00", "90", "90", "0")},
		[]*models.InvoiceRecord{twob("INV001", "1050.00", "90", "90", "0")},
	)

	r := results[0]
	if r.Status != models.StatusAmountMismatch {
		t.Errorf("Status = %s, want AMOUNT_MISMATCH", r.Status)
	}
	if !r.InvoiceAmountDiff.Equal(decimal.NewFromInt(50)) {
		t.Errorf("InvoiceAmountDiff = %s, want 50.00", r.InvoiceAmountDiff)
	}
}

func TestReconcile_TaxMismatch(t *testing.T) {
	// Amount inside tolerance, tax outside: TAX_MISMATCH.
	results := testEngine().Reconcile(
		[]*models.InvoiceRecord{books("INV001", "1000.00", "90", "90", "0")},
		[]*models.InvoiceRecord{twob("INV001", "1000.00", "50", "50", "0")},
	)

	r := results[0]
	if r.Status != models.StatusTaxMismatch {
		t.Errorf("Status = %s, want TAX_MISMATCH", r.Status)
	}
	if !r.TotalTaxDiff.Equal(decimal.NewFromInt(80)) {
		t.Errorf("TotalTaxDiff = %s, want 80", r.TotalTaxDiff)
	}
	if !r.CGSTDiff.Equal(decimal.NewFromInt(40)) {
		t.Errorf("CGSTDiff = %s, want 40", r.CGSTDiff)
	}
}

func TestReconcile_AmountMismatchWinsOverTax(t *testing.T) {
	// Both out of tolerance: amount classification takes precedence.
	results := testEngine().Reconcile(
		[]*models.InvoiceRecord{books("INV001", "1000.00", "90", "90", "0")},
		[]*models.InvoiceRecord{twob("INV001", "2000.00", "0", "0", "0")},
	)
	if results[0].Status != models.StatusAmountMismatch {
		t.Errorf("Status = %s, want AMOUNT_MISMATCH", results[0].Status)
	}
}

func TestReconcile_ToleranceBoundary(t *testing.T) {
	// Diff exactly at tolerance is MATCHED; one paisa over is a mismatch.
	exact := testEngine().Reconcile(
		[]*models.InvoiceRecord{books("INV001", "1000.00", "0", "0", "0")},
		[]*models.InvoiceRecord{twob("INV001", "1001.00", "0", "0", "0")},
	)
	if exact[0].Status != models.StatusMatched {
		t.Errorf("diff == tolerance: Status = %s, want MATCHED", exact[0].Status)
	}

	over := testEngine().Reconcile(
		[]*models.InvoiceRecord{books("INV001", "1000.00", "0", "0", "0")},
		[]*models.InvoiceRecord{twob("INV001", "1001.01", "0", "0", "0")},
	)
	if over[0].Status != models.StatusAmountMismatch {
		t.Errorf("diff == tolerance+0.01: Status = %s, want AMOUNT_MISMATCH", over[0].Status)
	}
}

func TestReconcile_UnmatchedBooks(t *testing.T) {
	results := testEngine().Reconcile(
		[]*models.InvoiceRecord{
			books("INV001", "1000.00", "90", "90", "0"),
			books("INV002", "500.00", "45", "45", "0"),
		},
		[]*models.InvoiceRecord{twob("INV001", "1000.00", "90", "90", "0")},
	)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	var unmatched []*models.MatchResult
	for _, r := range results {
		if r.Status == models.StatusUnmatchedBooks {
			unmatched = append(unmatched, r)
		}
	}
	if len(unmatched) != 1 {
		t.Fatalf("unmatched books results = %d, want exactly 1", len(unmatched))
	}
	r := unmatched[0]
	if r.InvoiceNumber != "INV002" {
		t.Errorf("unmatched invoice = %s, want INV002", r.InvoiceNumber)
	}
	if r.TwoB != nil || r.Books == nil {
		t.Error("UNMATCHED_BOOKS must carry only the books record")
	}
	if !r.InvoiceAmountDiff.IsZero() || !r.TotalTaxDiff.IsZero() {
		t.Error("diffs on unmatched results must be zero")
	}
}

func TestReconcile_KeyFragmentPairsVariants(t *testing.T) {
	// "inv-001" and "INV 001" share a match key.
	results := testEngine().Reconcile(
		[]*models.InvoiceRecord{books("inv-001", "1000.00", "0", "0", "0")},
		[]*models.InvoiceRecord{twob("INV 001", "1000.00", "0", "0", "0")},
	)
	if len(results) != 1 || results[0].Status != models.StatusMatched {
		t.Fatalf("variant invoice numbers did not pair: %+v", results)
	}
	// Display value comes from the books side when present.
	if results[0].InvoiceNumber != "inv-001" {
		t.Errorf("InvoiceNumber = %s, want books display value", results[0].InvoiceNumber)
	}
}

func TestReconcile_OrdinalPairingOfDuplicates(t *testing.T) {
	// Two books and one 2B under the same key: first books record pairs in
	// ingestion order, the second is surplus.
	results := testEngine().Reconcile(
		[]*models.InvoiceRecord{
			books("INV001", "100.00", "0", "0", "0"),
			books("INV001", "200.00", "0", "0", "0"),
		},
		[]*models.InvoiceRecord{twob("INV001", "200.00", "0", "0", "0")},
	)

	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	// Ordinal, not closest-amount: 100.00 pairs with 200.00.
	if results[0].Status != models.StatusAmountMismatch {
		t.Errorf("first result = %s, want AMOUNT_MISMATCH from ordinal pairing", results[0].Status)
	}
	if results[1].Status != models.StatusUnmatchedBooks {
		t.Errorf("second result = %s, want UNMATCHED_BOOKS", results[1].Status)
	}
	if !results[1].Books.InvoiceAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("surplus record amount = %s, want 200.00", results[1].Books.InvoiceAmount)
	}
}

func TestReconcile_EmptySide(t *testing.T) {
	results := testEngine().Reconcile(
		nil,
		[]*models.InvoiceRecord{
			twob("INV001", "100.00", "0", "0", "0"),
			twob("INV002", "200.00", "0", "0", "0"),
		},
	)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for _, r := range results {
		if r.Status != models.StatusUnmatched2B {
			t.Errorf("Status = %s, want UNMATCHED_2B", r.Status)
		}
	}

	if got := testEngine().Reconcile(nil, nil); len(got) != 0 {
		t.Errorf("both sides empty: len = %d, want 0", len(got))
	}
}

func mixedSnapshot() ([]*models.InvoiceRecord, []*models.InvoiceRecord) {
	b := []*models.InvoiceRecord{
		books("INV001", "1000.00", "90", "90", "0"),
		books("INV002", "500.00", "45", "45", "0"),
		books("INV003", "750.00", "0", "0", "135"),
		books("INV004", "2000.00", "180", "180", "0"),
		rec(models.RecordTypeBooks, "29BBBBB1111B2Z6", "INV010", "100.00", "9", "9", "0"),
	}
	t2 := []*models.InvoiceRecord{
		twob("INV001", "1000.50", "90", "90", "0"), // matched
		twob("INV002", "600.00", "45", "45", "0"),  // amount mismatch
		twob("INV003", "750.00", "0", "0", "35"),   // tax mismatch
		twob("INV099", "300.00", "27", "27", "0"),  // unmatched 2B
	}
	return b, t2
}

func TestReconcile_Deterministic(t *testing.T) {
	b, t2 := mixedSnapshot()
	first := testEngine().Reconcile(b, t2)
	second := testEngine().Reconcile(b, t2)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical snapshots produced different result lists")
	}
}

func TestReconcile_Conservation(t *testing.T) {
	b, t2 := mixedSnapshot()
	results := testEngine().Reconcile(b, t2)
	s := Summarize(results)

	booksSide := s.MatchedRecords + s.AmountMismatches + s.TaxMismatches + s.UnmatchedBooksRecords
	if booksSide != s.TotalBooksRecords {
		t.Errorf("books conservation broken: %d classified vs %d total", booksSide, s.TotalBooksRecords)
	}
	twobSide := s.MatchedRecords + s.AmountMismatches + s.TaxMismatches + s.Unmatched2BRecords
	if twobSide != s.Total2BRecords {
		t.Errorf("2B conservation broken: %d classified vs %d total", twobSide, s.Total2BRecords)
	}
	if s.TotalBooksRecords != len(b) || s.Total2BRecords != len(t2) {
		t.Errorf("summary totals %d/%d, want %d/%d", s.TotalBooksRecords, s.Total2BRecords, len(b), len(t2))
	}
}

func TestReconcile_GroupedByKeyOrder(t *testing.T) {
	b, t2 := mixedSnapshot()
	results := testEngine().Reconcile(b, t2)

	// Keys ascend by (gstin, fragment); every result for a key is contiguous.
	seen := map[models.MatchKey]int{}
	var lastKey models.MatchKey
	for i, r := range results {
		key := models.MatchKey{GSTIN: r.GSTIN, Fragment: models.KeyFragment(r.InvoiceNumber)}
		if prev, ok := seen[key]; ok && key != lastKey {
			t.Fatalf("key %v split across positions %d and %d", key, prev, i)
		}
		seen[key] = i
		if i > 0 && key != lastKey {
			if key.GSTIN < lastKey.GSTIN || (key.GSTIN == lastKey.GSTIN && key.Fragment < lastKey.Fragment) {
				t.Fatalf("keys out of order at %d: %v after %v", i, key, lastKey)
			}
		}
		lastKey = key
	}
}
