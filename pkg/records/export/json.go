package export

import (
	"context"
	"encoding/json"
	"io"

	"meridian-hq/janus/pkg/records"
)

// JSONExporter writes request records as a JSON array.
type JSONExporter struct {
	// Pretty enables indented output.
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export implements records.Exporter.
func (e *JSONExporter) Export(ctx context.Context, recs []*records.RequestRecord, w io.Writer) error {
	if recs == nil {
		recs = []*records.RequestRecord{}
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(recs, "", "  ")
	} else {
		data, err = json.Marshal(recs)
	}
	if err != nil {
		return records.NewExportError("json", len(recs), err)
	}
	if _, err := w.Write(data); err != nil {
		return records.NewExportError("json", len(recs), err)
	}
	return nil
}

// ExportStream writes records from a channel as a JSON array without
// holding the full result set in memory.
func (e *JSONExporter) ExportStream(ctx context.Context, recs <-chan *records.RequestRecord, w io.Writer) error {
	if _, err := w.Write([]byte("[")); err != nil {
		return records.NewExportError("json", 0, err)
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-recs:
			if !ok {
				if _, err := w.Write([]byte("]")); err != nil {
					return records.NewExportError("json", count, err)
				}
				return nil
			}

			if count > 0 {
				if _, err := w.Write([]byte(",")); err != nil {
					return records.NewExportError("json", count, err)
				}
			}

			var data []byte
			var err error
			if e.Pretty {
				data, err = json.MarshalIndent(rec, "", "  ")
			} else {
				data, err = json.Marshal(rec)
			}
			if err != nil {
				return records.NewExportError("json", count, err)
			}
			if _, err := w.Write(data); err != nil {
				return records.NewExportError("json", count, err)
			}
			count++
		}
	}
}
