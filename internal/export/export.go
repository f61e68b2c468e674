// Package export writes relaxed magnetization profiles for other tools:
// spreadsheets, CSV, JSON and the plain console listing.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/spinchain/internal/micromag"
)

// Header is the first row of every tabular export.
var Header = []string{"X", "Y", "Z"}

const sheet = "Sheet1"

var ErrMalformed = errors.New("export: malformed magnetization table")

// WriteXLSX saves the snapshot as a workbook with one header row followed
// by one row per site.
func WriteXLSX(path string, s micromag.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, m := range s {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{m[0], m[1], m[2]}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// ReadXLSX loads a workbook written by WriteXLSX.
func ReadXLSX(path string) (micromag.Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func WriteCSV(w io.Writer, s micromag.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, m := range s {
		row := []string{
			strconv.FormatFloat(m[0], 'g', -1, 64),
			strconv.FormatFloat(m[1], 'g', -1, 64),
			strconv.FormatFloat(m[2], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (micromag.Snapshot, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	return parseRows(records)
}

func parseRows(rows [][]string) (micromag.Snapshot, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	s := make(micromag.Snapshot, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != 3 {
			return nil, fmt.Errorf("%w: row %d has %d columns", ErrMalformed, i+1, len(row))
		}
		var m micromag.Vec3
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(row[k], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, i+1, err)
			}
			m[k] = v
		}
		s = append(s, m)
	}
	return s, nil
}

type jsonCell struct {
	Cell int     `json:"cell"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

func WriteJSON(w io.Writer, s micromag.Snapshot) error {
	cells := make([]jsonCell, len(s))
	for i, m := range s {
		cells[i] = jsonCell{Cell: i, X: m[0], Y: m[1], Z: m[2]}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(cells)
}

// Print writes one "Cell i: m = (x, y, z)" line per site.
func Print(w io.Writer, s micromag.Snapshot) error {
	for i, m := range s {
		if _, err := fmt.Fprintf(w, "Cell %d: m = (%.6f, %.6f, %.6f)\n", i, m[0], m[1], m[2]); err != nil {
			return err
		}
	}
	return nil
}
