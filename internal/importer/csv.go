package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"revise/internal/storage"
)

// CSVParser reads name,subject[,notes][,created] rows with a header line.
type CSVParser struct {
	Now func() time.Time
}

func (p *CSVParser) Name() string { return "csv" }

func (p *CSVParser) Parse(r io.Reader) ([]storage.Topic, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header = append([]string(nil), header...)

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, record)
	}

	return tableParser{now: p.Now}.parse(header, rows)
}
