package ingest

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadRecords reads the enriched company JSON dump (a top-level array).
func LoadRecords(path string) ([]CompanyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records file: %w", err)
	}

	var records []CompanyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records file %s: %w", path, err)
	}

	return records, nil
}
