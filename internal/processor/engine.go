// Package processor implements the reconciliation engine: pairing Books
// records against 2B records by match key and classifying every pair and
// leftover.
package processor

import (
	"sort"

	"github.com/shopspring/decimal"

	"gst-reconciliation-engine/backend/internal/models"
)

// Engine pairs and classifies records. It is pure: identical input snapshots
// always produce an identical result list, in the same order.
type Engine struct {
	amountTolerance decimal.Decimal
	taxTolerance    decimal.Decimal
}

// NewEngine builds an engine with explicit tolerances. Tolerances are
// configuration, never package state.
func NewEngine(amountTolerance, taxTolerance decimal.Decimal) *Engine {
	return &Engine{amountTolerance: amountTolerance, taxTolerance: taxTolerance}
}

// Reconcile matches the two sides and returns every outcome, grouped by key
// in ascending (gstin, invoice fragment) order. Within a key, paired results
// come first in ordinal order, then surplus Books records, then surplus 2B.
// Either side may be empty; the other side then comes back all-unmatched.
func (e *Engine) Reconcile(books, twob []*models.InvoiceRecord) []*models.MatchResult {
	booksByKey := bucket(books)
	twobByKey := bucket(twob)

	keys := make([]models.MatchKey, 0, len(booksByKey)+len(twobByKey))
	seen := make(map[models.MatchKey]struct{}, len(booksByKey)+len(twobByKey))
	for _, r := range books {
		if _, ok := seen[r.Key()]; !ok {
			seen[r.Key()] = struct{}{}
			keys = append(keys, r.Key())
		}
	}
	for _, r := range twob {
		if _, ok := seen[r.Key()]; !ok {
			seen[r.Key()] = struct{}{}
			keys = append(keys, r.Key())
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].GSTIN != keys[j].GSTIN {
			return keys[i].GSTIN < keys[j].GSTIN
		}
		return keys[i].Fragment < keys[j].Fragment
	})

	results := make([]*models.MatchResult, 0, len(books)+len(twob))
	for _, key := range keys {
		b := booksByKey[key]
		t := twobByKey[key]

		// Ordinal pairing: i-th Books record against i-th 2B record in
		// ingestion order within the bucket.
		paired := len(b)
		if len(t) < paired {
			paired = len(t)
		}
		for i := 0; i < paired; i++ {
			results = append(results, e.classifyPair(b[i], t[i]))
		}
		for _, r := range b[paired:] {
			results = append(results, unmatched(r, models.StatusUnmatchedBooks))
		}
		for _, r := range t[paired:] {
			results = append(results, unmatched(r, models.StatusUnmatched2B))
		}
	}
	return results
}

func (e *Engine) classifyPair(b, t *models.InvoiceRecord) *models.MatchResult {
	amountDiff := b.InvoiceAmount.Sub(t.InvoiceAmount).Abs()
	taxDiff := b.TotalTax.Sub(t.TotalTax).Abs()

	status := models.StatusMatched
	switch {
	case amountDiff.GreaterThan(e.amountTolerance):
		status = models.StatusAmountMismatch
	case taxDiff.GreaterThan(e.taxTolerance):
		status = models.StatusTaxMismatch
	}

	return &models.MatchResult{
		GSTIN:             b.GSTIN,
		InvoiceNumber:     b.InvoiceNumber,
		Status:            status,
		Books:             b,
		TwoB:              t,
		InvoiceAmountDiff: amountDiff,
		CGSTDiff:          b.CGST.Sub(t.CGST).Abs(),
		SGSTDiff:          b.SGST.Sub(t.SGST).Abs(),
		IGSTDiff:          b.IGST.Sub(t.IGST).Abs(),
		TotalTaxDiff:      taxDiff,
	}
}

func unmatched(r *models.InvoiceRecord, status models.MatchStatus) *models.MatchResult {
	result := &models.MatchResult{
		GSTIN:             r.GSTIN,
		InvoiceNumber:     r.InvoiceNumber,
		Status:            status,
		InvoiceAmountDiff: decimal.Zero,
		CGSTDiff:          decimal.Zero,
		SGSTDiff:          decimal.Zero,
		IGSTDiff:          decimal.Zero,
		TotalTaxDiff:      decimal.Zero,
	}
	if status == models.StatusUnmatchedBooks {
		result.Books = r
	} else {
		result.TwoB = r
	}
	return result
}

func bucket(records []*models.InvoiceRecord) map[models.MatchKey][]*models.InvoiceRecord {
	byKey := make(map[models.MatchKey][]*models.InvoiceRecord)
	for _, r := range records {
		byKey[r.Key()] = append(byKey[r.Key()], r)
	}
	return byKey
}
