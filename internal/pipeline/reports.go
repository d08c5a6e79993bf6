// internal/pipeline/reports.go
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/retailpulse/forecast-engine/internal/storage"
)

const reportPrefix = "reports/"

// ListArchivedReports returns the report objects stored under prefix,
// defaulting to the trainer's archive location.
func ListArchivedReports(ctx context.Context, store storage.ObjectStorage, prefix string) ([]storage.ObjectInfo, error) {
	if prefix == "" {
		prefix = reportPrefix
	}
	objects, err := store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return objects, nil
}

// FetchArchivedReport downloads and decodes one archived run report.
func FetchArchivedReport(ctx context.Context, store storage.ObjectStorage, key string) (*Report, error) {
	data, err := store.DownloadObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("download report %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("report %s not found", key)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", key, err)
	}
	return &report, nil
}
