// Package report serializes findings into the persisted scan artifacts.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/scan-io-git/credscan/internal/findings"
)

const (
	// DefaultPath is where the spreadsheet is written when nothing else is configured.
	DefaultPath = "hardcoded_passwords.xlsx"
	// DefaultSheet is the name of the only sheet in the workbook.
	DefaultSheet = "Passwords"
)

// XLSXWriter writes findings into a single-sheet workbook.
type XLSXWriter struct {
	Path  string
	Sheet string
}

// NewXLSXWriter returns a writer for path and sheet, falling back to the defaults.
func NewXLSXWriter(path, sheet string) *XLSXWriter {
	if path == "" {
		path = DefaultPath
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &XLSXWriter{Path: path, Sheet: sheet}
}

// Write replaces any existing workbook at w.Path with a header row followed by
// one row per finding, in the order given. It returns the path written.
func (w *XLSXWriter) Write(results []findings.Finding) (string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(defaultSheet, w.Sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet %q: %w", w.Sheet, err)
	}

	header := make([]interface{}, len(findings.Header))
	for i, h := range findings.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(w.Sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, finding := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		row := finding.Row()
		if err := f.SetSheetRow(w.Sheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if dir := filepath.Dir(w.Path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return "", fmt.Errorf("failed to create report directory %q: %w", dir, err)
		}
	}
	if err := f.SaveAs(w.Path); err != nil {
		return "", fmt.Errorf("failed to save report %q: %w", w.Path, err)
	}
	return w.Path, nil
}

// ReadXLSX returns every row of sheet in the workbook at path, header included.
func ReadXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
