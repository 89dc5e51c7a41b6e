package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"revise/internal/storage"
)

// XLSXParser reads the first sheet of a workbook (or Sheet when set) using
// the same columns as CSV.
type XLSXParser struct {
	Now   func() time.Time
	Sheet string
}

func (p *XLSXParser) Name() string { return "xlsx" }

func (p *XLSXParser) Parse(r io.Reader) ([]storage.Topic, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := p.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	return tableParser{now: p.Now}.parse(rows[0], rows[1:])
}
