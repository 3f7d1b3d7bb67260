package glossary

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses a glossary from CSV. The header row lists locale codes;
// each data row is one entry; empty cells mean no translation for that
// language.
func ReadCSV(r io.Reader) (*Glossary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("glossary is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary header: %w", err)
	}

	g := &Glossary{}
	for _, cell := range header {
		g.Languages = append(g.Languages, normalizeHeader(cell))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read glossary row: %w", err)
		}

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

// WriteCSV writes the glossary with its language columns in order.
func WriteCSV(w io.Writer, g *Glossary) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(g.Languages); err != nil {
		return fmt.Errorf("failed to write glossary header: %w", err)
	}

	row := make([]string, len(g.Languages))
	for _, entry := range g.Entries {
		for i, code := range g.Languages {
			row[i] = entry.Translations[code]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write glossary row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
