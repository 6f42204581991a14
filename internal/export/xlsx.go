package export

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
)

// numericColumns are written as numbers rather than text.
var numericColumns = map[string]bool{
	"purchase":     true,
	"return":       true,
	"sell":         true,
	"rate_per_pc":  true,
	"net_value":    true,
	"vc":           true,
	"previous_due": true,
	"total":        true,
}

// RenderXLSX lays rows out in a single sheet with a styled header row.
func RenderXLSX(sheet string, header []string, rows []sheets.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFA500"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return nil, err
		}
		lastCol, err := excelize.ColumnNumberToName(len(header))
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 14); err != nil {
			return nil, err
		}
	}

	for i, rec := range rows {
		for col, name := range header {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(name, rec[name])); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(column, raw string) any {
	if !numericColumns[column] || raw == "" {
		return raw
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return raw
	}
	return d.InexactFloat64()
}
