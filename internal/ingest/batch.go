package ingest

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"gst-reconciliation-engine/backend/internal/models"
)

// BatchResult reports one file ingestion: how many rows were accepted and
// every rejection with its row, field and reason. Rejections never abort the
// rest of the batch.
type BatchResult struct {
	AcceptedCount int        `json:"accepted_count"`
	RejectedRows  []RowError `json:"rejected_rows"`
}

// Ingestor turns uploaded file bytes into accepted records plus a rejection
// report.
type Ingestor struct {
	mapper  *ColumnMapper
	workers int
	log     *logrus.Logger
}

func NewIngestor(synonyms SynonymTable, workers int, log *logrus.Logger) *Ingestor {
	if workers < 1 {
		workers = 1
	}
	return &Ingestor{mapper: NewColumnMapper(synonyms), workers: workers, log: log}
}

// IngestFile parses, maps and normalizes an uploaded spreadsheet. Row
// validation runs on a bounded worker pool; results are reassembled in
// original row order so parallelism never changes what the caller observes.
func (ing *Ingestor) IngestFile(ctx context.Context, recordType models.RecordType, data []byte, filename string) ([]*models.InvoiceRecord, *BatchResult, error) {
	rows, err := ReadSheet(data, filename)
	if err != nil {
		return nil, nil, err
	}

	cols, err := ing.mapper.Map(rows[0])
	if err != nil {
		return nil, nil, err
	}

	dataRows := rows[1:]
	records := make([]*models.InvoiceRecord, len(dataRows))
	rowErrs := make([][]FieldError, len(dataRows))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)
	for i, row := range dataRows {
		if isBlankRow(row) {
			continue // trailing empty spreadsheet rows are not rejections
		}
		i, row := i, row
		g.Go(func() error {
			// Row numbers are as seen in the spreadsheet: header is row 1.
			records[i], rowErrs[i] = NormalizeRow(recordType, cols, row, i+2)
			return nil
		})
	}
	_ = g.Wait() // workers only write their own slot and never error

	result := &BatchResult{RejectedRows: []RowError{}}
	accepted := make([]*models.InvoiceRecord, 0, len(dataRows))
	for i := range dataRows {
		if records[i] != nil {
			accepted = append(accepted, records[i])
			continue
		}
		for _, fe := range rowErrs[i] {
			result.RejectedRows = append(result.RejectedRows, RowError{
				RowIndex: i + 2,
				Field:    fe.Field,
				Reason:   fe.Reason,
			})
		}
	}
	result.AcceptedCount = len(accepted)

	ing.log.WithFields(logrus.Fields{
		"record_type": recordType,
		"filename":    filename,
		"accepted":    result.AcceptedCount,
		"rejected":    len(result.RejectedRows),
	}).Info("file ingested")

	return accepted, result, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		for _, r := range cell {
			if r != ' ' && r != '\t' {
				return false
			}
		}
	}
	return true
}
