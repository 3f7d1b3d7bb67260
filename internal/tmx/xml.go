package tmx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

// TMX 1.4 interchange. Export writes one <tu> per unit with two <tuv>
// entries; import tolerates absent optional attributes and accepts any
// number of <tuv> per <tu>, pairing the source-language variant with every
// other variant.

const (
	creationTool = "lingokit"
	toolVersion  = "1.0"
)

type exportFile struct {
	XMLName xml.Name     `xml:"tmx"`
	Version string       `xml:"version,attr"`
	Header  exportHeader `xml:"header"`
	Body    exportBody   `xml:"body"`
}

type exportHeader struct {
	SrcLang             string `xml:"srclang,attr"`
	CreationTool        string `xml:"creationtool,attr"`
	CreationToolVersion string `xml:"creationtoolversion,attr"`
	CreationDate        string `xml:"creationdate,attr"`
	SegType             string `xml:"segtype,attr"`
	DataType            string `xml:"datatype,attr"`
	AdminLang           string `xml:"adminlang,attr"`
	OTmf                string `xml:"o-tmf,attr"`
}

type exportBody struct {
	TUs []exportTU `xml:"tu"`
}

type exportTU struct {
	UsageCount string       `xml:"usagecount,attr,omitempty"`
	Props      []exportProp `xml:"prop,omitempty"`
	TUVs       []exportTUV  `xml:"tuv"`
}

type exportProp struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type exportTUV struct {
	Lang string `xml:"xml:lang,attr"`
	Seg  string `xml:"seg"`
}

// Write exports the memory as TMX 1.4. encoding/xml escapes & < > " ' in
// segment content and attributes, which keeps inline markup survivable
// through a round trip.
func Write(w io.Writer, mem *Memory, srcLang string) error {
	doc := exportFile{
		Version: "1.4",
		Header: exportHeader{
			SrcLang:             srcLang,
			CreationTool:        creationTool,
			CreationToolVersion: toolVersion,
			CreationDate:        time.Now().UTC().Format("20060102T150405Z"),
			SegType:             "sentence",
			DataType:            "plaintext",
			AdminLang:           "en",
			OTmf:                creationTool,
		},
	}

	mem.mu.RLock()
	units := append([]Unit(nil), mem.Units...)
	mem.mu.RUnlock()

	for _, unit := range units {
		tu := exportTU{
			TUVs: []exportTUV{
				{Lang: unit.SourceLang, Seg: unit.SourceText},
				{Lang: unit.TargetLang, Seg: unit.TargetText},
			},
		}
		if unit.UsageCount > 0 {
			tu.UsageCount = strconv.Itoa(unit.UsageCount)
		}
		if unit.Quality > 0 {
			tu.Props = append(tu.Props, exportProp{Type: "x-quality", Value: strconv.Itoa(unit.Quality)})
		}
		if unit.Context != "" {
			tu.Props = append(tu.Props, exportProp{Type: "x-context", Value: unit.Context})
		}
		doc.Body.TUs = append(doc.Body.TUs, tu)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode TMX: %w", err)
	}
	return enc.Flush()
}

type importFile struct {
	XMLName xml.Name     `xml:"tmx"`
	Header  importHeader `xml:"header"`
	Body    importBody   `xml:"body"`
}

type importHeader struct {
	SrcLang string `xml:"srclang,attr"`
}

type importBody struct {
	TUs []importTU `xml:"tu"`
}

type importTU struct {
	UsageCount string       `xml:"usagecount,attr"`
	SrcLang    string       `xml:"srclang,attr"`
	Props      []exportProp `xml:"prop"`
	TUVs       []importTUV  `xml:"tuv"`
}

type importTUV struct {
	Lang string `xml:"lang,attr"`
	Seg  string `xml:"seg"`
}

// Read parses a TMX document into a Memory. Entities inside <seg> are
// decoded by the XML decoder, so escaped inline markup comes back as
// literal tags. Translation units with fewer than two variants are skipped
// as malformed rather than failing the whole import.
func Read(r io.Reader) (*Memory, error) {
	var doc importFile
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse TMX: %w", err)
	}

	mem := NewMemory()

	for _, tu := range doc.Body.TUs {
		if len(tu.TUVs) < 2 {
			continue
		}

		srcLang := tu.SrcLang
		if srcLang == "" {
			srcLang = doc.Header.SrcLang
		}

		// Pick the source variant: the one matching srclang, else the
		// first.
		srcIdx := 0
		if srcLang != "" {
			for i, tuv := range tu.TUVs {
				if sameLanguage(tuv.Lang, srcLang) {
					srcIdx = i
					break
				}
			}
		}
		src := tu.TUVs[srcIdx]

		usage := 0
		if tu.UsageCount != "" {
			if n, err := strconv.Atoi(tu.UsageCount); err == nil {
				usage = n
			}
		}
		quality := 0
		contextProp := ""
		for _, p := range tu.Props {
			switch p.Type {
			case "x-quality", "quality":
				if n, err := strconv.Atoi(p.Value); err == nil {
					quality = n
				}
			case "x-context", "context":
				contextProp = p.Value
			}
		}

		for i, tuv := range tu.TUVs {
			if i == srcIdx {
				continue
			}
			mem.Add(Unit{
				SourceText: src.Seg,
				TargetText: tuv.Seg,
				SourceLang: src.Lang,
				TargetLang: tuv.Lang,
				Quality:    quality,
				UsageCount: usage,
				Context:    contextProp,
			})
		}
	}

	return mem, nil
}
