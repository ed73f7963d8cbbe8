// Package xlsx provides a Normaliser for Excel workbooks. Sheet cells are
// rendered one row per line with tab separated values; shared strings are
// resolved.
package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/officexml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles XLSX workbooks.
type Normaliser struct{}

// New creates a new XLSX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "xlsx"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".xlsx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

// Normalise extracts the cell text of every worksheet.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := officexml.Open(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	shared, err := sharedStrings(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	var sheets []string
	for _, name := range officexml.Parts(reader, "xl/worksheets/sheet*.xml") {
		data, _, err := officexml.ReadPart(reader, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.Name, err)
		}
		text, err := sheetText(data, shared)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", raw.Name, name, err)
		}
		if text != "" {
			sheets = append(sheets, text)
		}
	}

	return &driven.NormaliseResult{
		Text:   strings.Join(sheets, "\n\n"),
		Format: "xlsx",
	}, nil
}

// sharedStrings reads the workbook string table.
func sharedStrings(reader *zip.Reader) ([]string, error) {
	data, ok, err := officexml.ReadPart(reader, "xl/sharedStrings.xml")
	if err != nil || !ok {
		return nil, err
	}

	var table []string
	var current strings.Builder
	inText := false

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing shared strings: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				current.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "si":
				table = append(table, current.String())
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return table, nil
}

// sheetText renders a worksheet as rows of tab separated cell values.
func sheetText(data []byte, shared []string) (string, error) {
	var rows []string
	var cells []string
	var cellType string
	var value strings.Builder
	inValue := false

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing sheet: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				cells = cells[:0]
			case "c":
				cellType = attr(t, "t")
				value.Reset()
			case "v", "t":
				inValue = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inValue = false
			case "c":
				if v := cellValue(cellType, value.String(), shared); v != "" {
					cells = append(cells, v)
				}
			case "row":
				if len(cells) > 0 {
					rows = append(rows, strings.Join(cells, "\t"))
				}
			}
		case xml.CharData:
			if inValue {
				value.Write(t)
			}
		}
	}
	return strings.Join(rows, "\n"), nil
}

func cellValue(cellType, raw string, shared []string) string {
	if cellType != "s" {
		return strings.TrimSpace(raw)
	}
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || idx < 0 || idx >= len(shared) {
		return ""
	}
	return strings.TrimSpace(shared[idx])
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
