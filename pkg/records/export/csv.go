package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"meridian-hq/janus/pkg/records"
)

// CSVExporter writes request records as CSV rows.
type CSVExporter struct {
	// IncludeHeader emits a header row first.
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export implements records.Exporter.
func (e *CSVExporter) Export(ctx context.Context, recs []*records.RequestRecord, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if e.IncludeHeader {
		if err := cw.Write(headerRow()); err != nil {
			return records.NewExportError("csv", len(recs), err)
		}
	}
	for _, rec := range recs {
		if err := cw.Write(recordRow(rec)); err != nil {
			return records.NewExportError("csv", len(recs), err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return records.NewExportError("csv", len(recs), err)
	}
	return nil
}

// ExportStream writes records from a channel as CSV rows, flushing every
// flushEvery rows so long exports show progress.
func (e *CSVExporter) ExportStream(ctx context.Context, recs <-chan *records.RequestRecord, w io.Writer) error {
	const flushEvery = 100

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if e.IncludeHeader {
		if err := cw.Write(headerRow()); err != nil {
			return records.NewExportError("csv", 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-recs:
			if !ok {
				cw.Flush()
				if err := cw.Error(); err != nil {
					return records.NewExportError("csv", count, err)
				}
				return nil
			}
			if err := cw.Write(recordRow(rec)); err != nil {
				return records.NewExportError("csv", count, err)
			}
			count++
			if count%flushEvery == 0 {
				cw.Flush()
			}
		}
	}
}

func headerRow() []string {
	return []string{
		"id", "correlation_id", "time", "kind", "requested_model", "model",
		"provider", "strategy", "attempt", "user", "stream", "messages",
		"prompt_tokens", "completion_tokens", "total_tokens", "cost",
		"latency_ms", "success", "error_code", "error",
	}
}

func recordRow(rec *records.RequestRecord) []string {
	return []string{
		rec.ID,
		rec.CorrelationID,
		rec.Time.Format(time.RFC3339Nano),
		rec.Kind,
		rec.RequestedModel,
		rec.Model,
		rec.Provider,
		rec.Strategy,
		strconv.Itoa(rec.Attempt),
		rec.User,
		strconv.FormatBool(rec.Stream),
		strconv.Itoa(rec.Messages),
		strconv.Itoa(rec.PromptTokens),
		strconv.Itoa(rec.CompletionTokens),
		strconv.Itoa(rec.TotalTokens),
		strconv.FormatFloat(rec.Cost, 'f', -1, 64),
		strconv.FormatInt(rec.LatencyMS, 10),
		strconv.FormatBool(rec.Success),
		rec.ErrorCode,
		rec.Error,
	}
}
