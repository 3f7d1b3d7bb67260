package glossary

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses a glossary from the first sheet of a workbook. The layout
// mirrors the CSV form: header row of locale codes, one entry per row.
func ReadXLSX(r io.Reader) (*Glossary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("glossary is empty")
	}

	g := &Glossary{}
	for _, cell := range rows[0] {
		g.Languages = append(g.Languages, normalizeHeader(cell))
	}

	for _, record := range rows[1:] {
		entry := Entry{Translations: make(map[string]string, len(g.Languages))}
		empty := true
		for i, code := range g.Languages {
			if i < len(record) && record[i] != "" {
				entry.Translations[code] = record[i]
				empty = false
			}
		}
		if !empty {
			g.Entries = append(g.Entries, entry)
		}
	}

	return g, nil
}

// WriteXLSX writes the glossary as a single-sheet workbook.
func WriteXLSX(w io.Writer, g *Glossary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &g.Languages); err != nil {
		return fmt.Errorf("failed to write glossary header: %w", err)
	}

	for i, entry := range g.Entries {
		row := make([]interface{}, len(g.Languages))
		for j, code := range g.Languages {
			row[j] = entry.Translations[code]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write glossary row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
