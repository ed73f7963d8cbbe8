package plaintext

import (
	"bytes"
	"context"
	"net/http"
	"sort"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text files.
type Normaliser struct {
	extensions []string
}

// New creates a new plain text normaliser covering every text extension.
func New() *Normaliser {
	var exts []string
	for _, ext := range domain.KnownExtensions() {
		if domain.TypeForName("f" + ext).IsText() {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return &Normaliser{extensions: exts}
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "plaintext"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return n.extensions
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

// Normalise decodes raw bytes into text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	return &driven.NormaliseResult{
		Text:   Decode(raw.Content),
		Format: "text",
	}, nil
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts file bytes to a string. UTF-8 is assumed, UTF-16 is
// honoured when a byte order mark is present, and anything that is not
// valid UTF-8 is read as Windows-1252.
func Decode(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):])
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out)
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// DecodePrefix decodes the first bytes of a longer file. An incomplete
// UTF-8 sequence cut off at the end is dropped before decoding.
func DecodePrefix(data []byte) string {
	if trimmed := trimPartialRune(data); len(trimmed) < len(data) && utf8.Valid(trimmed) {
		return string(trimmed)
	}
	return Decode(data)
}

// trimPartialRune drops an incomplete UTF-8 sequence left at the end of a
// prefix read.
func trimPartialRune(data []byte) []byte {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if !utf8.RuneStart(b) {
			continue
		}
		if !utf8.FullRune(data[len(data)-i:]) {
			return data[:len(data)-i]
		}
		break
	}
	return data
}

// sniffLen matches the amount http.DetectContentType considers.
const sniffLen = 512

// LooksText reports whether a file prefix is probably text.
func LooksText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		return true
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.HasPrefix([]byte(http.DetectContentType(head)), []byte("text/")) {
		return true
	}
	return bytes.IndexByte(data, 0) < 0 && utf8.Valid(trimPartialRune(data))
}

// HasBinary reports whether text contains control characters other than
// common whitespace, which makes it unsuitable for display.
func HasBinary(text string) bool {
	for _, r := range text {
		if r == utf8.RuneError {
			return true
		}
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' && r != '\f' {
			return true
		}
		if r == 0x7f {
			return true
		}
	}
	return false
}
