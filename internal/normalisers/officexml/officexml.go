package officexml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// MaxPartBytes caps the decompressed size of a single XML part.
const MaxPartBytes = 64 << 20

// ErrPartTooLarge is returned when a part exceeds MaxPartBytes.
var ErrPartTooLarge = errors.New("archive part exceeds size limit")

// Open reads content as a zip archive.
func Open(content []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("not a zip archive: %w", domain.ErrInvalidInput)
	}
	return zr, nil
}

// ReadPart returns the bytes of the named part. The boolean is false when
// the archive has no such part.
func ReadPart(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return nil, true, err
		}
		return data, true, nil
	}
	return nil, false, nil
}

func readFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPartBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if len(data) > MaxPartBytes {
		return nil, fmt.Errorf("%s: %w", f.Name, ErrPartTooLarge)
	}
	return data, nil
}

// Parts returns the names of parts matching a path.Match pattern, ordered
// so that numbered parts sort by number (slide2 before slide10).
func Parts(zr *zip.Reader, pattern string) []string {
	var names []string
	for _, f := range zr.File {
		if ok, _ := path.Match(pattern, f.Name); ok {
			names = append(names, f.Name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		pi, ni := splitNumber(names[i])
		pj, nj := splitNumber(names[j])
		if pi != pj {
			return pi < pj
		}
		return ni < nj
	})
	return names
}

// splitNumber separates the trailing number of a part name from the rest,
// ignoring the extension.
func splitNumber(name string) (string, int) {
	base := strings.TrimSuffix(name, path.Ext(name))
	end := len(base)
	start := end
	for start > 0 && unicode.IsDigit(rune(base[start-1])) {
		start--
	}
	if start == end {
		return base, -1
	}
	n, err := strconv.Atoi(base[start:end])
	if err != nil {
		return base, -1
	}
	return base[:start], n
}

// Extractor streams text out of an XML part. Element names are matched on
// their local name, so "w:t" and "a:t" are both "t".
type Extractor struct {
	// Text lists elements whose character data is kept. When empty, all
	// character data is kept.
	Text []string
	// Breaks lists elements that end a line.
	Breaks []string
	// Tabs lists elements that stand for a tab.
	Tabs []string
	// Spaces lists elements that stand for a space.
	Spaces []string
}

// Extract returns the text of an XML document, one block per line.
func (e Extractor) Extract(data []byte) (string, error) {
	text := toSet(e.Text)
	breaks := toSet(e.Breaks)
	tabs := toSet(e.Tabs)
	spaces := toSet(e.Spaces)

	dec := xml.NewDecoder(bytes.NewReader(data))

	var b strings.Builder
	depth := 0 // open elements in text
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if text[name] {
				depth++
			}
			if tabs[name] {
				b.WriteByte('\t')
			}
			if spaces[name] {
				b.WriteByte(' ')
			}
		case xml.EndElement:
			name := t.Name.Local
			if text[name] && depth > 0 {
				depth--
			}
			if breaks[name] {
				b.WriteByte('\n')
			}
		case xml.CharData:
			if len(text) == 0 || depth > 0 {
				b.Write(t)
			}
		}
	}
	return Clean(b.String()), nil
}

// ExtractParts runs the extractor over several parts of an archive and
// joins the non-empty results with blank lines. Missing parts are skipped.
func (e Extractor) ExtractParts(zr *zip.Reader, names ...string) (string, error) {
	var sections []string
	for _, name := range names {
		data, ok, err := ReadPart(zr, name)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		text, err := e.Extract(data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		if text != "" {
			sections = append(sections, text)
		}
	}
	return strings.Join(sections, "\n\n"), nil
}

// Clean trims every line and drops blank ones.
func Clean(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimRightFunc(strings.TrimLeft(line, " "), unicode.IsSpace)
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
