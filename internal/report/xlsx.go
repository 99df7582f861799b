package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"

	"github.com/hamed0406/urlstatus/internal/domain"
)

// SheetName is the worksheet WriteXLSX fills.
const SheetName = "results"

// WriteXLSX writes a workbook with one sheet holding the CSV columns.
// Numeric columns are stored as numbers.
func WriteXLSX(w io.Writer, results []domain.ProbeResult) (err error) {
	f := excelize.NewFile()
	defer func() { err = multierr.Append(err, f.Close()) }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		values := xlsxRow(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

func xlsxRow(r domain.ProbeResult) []interface{} {
	var code, rt, cl interface{}
	if r.HTTPStatusCode != nil {
		code = *r.HTTPStatusCode
	}
	if r.ResponseTimeMillis != nil {
		rt = *r.ResponseTimeMillis
	}
	if r.ContentLength != nil {
		cl = *r.ContentLength
	}
	return []interface{}{
		r.OriginalInput,
		r.FinalURL,
		string(r.Status),
		code,
		rt,
		cl,
		optString(r.ContentType),
		optString(r.Server),
		r.RedirectCount,
		optString(r.ErrorMessage),
		r.Timestamp.Format(time.RFC3339Nano),
	}
}
