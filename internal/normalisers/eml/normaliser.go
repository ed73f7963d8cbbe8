package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/html"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxDepth bounds nested multipart recursion.
const maxDepth = 8

// Normaliser handles EML (email) documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "eml"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".eml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

// Normalise renders the headers and readable body of an email message.
// Attachment file names are listed so they can be matched.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%s is not an email message: %w", raw.Name, domain.ErrInvalidInput)
	}

	var body message
	body.walk(textproto.MIMEHeader(msg.Header), msg.Body, 0)

	var content strings.Builder
	for _, key := range []string{"From", "To", "Cc", "Date", "Subject"} {
		if v := decodeHeader(msg.Header.Get(key)); v != "" {
			content.WriteString(key)
			content.WriteString(": ")
			content.WriteString(v)
			content.WriteString("\n")
		}
	}
	content.WriteString("\n")
	content.WriteString(body.text())
	if len(body.attachments) > 0 {
		content.WriteString("\n\nAttachments: ")
		content.WriteString(strings.Join(body.attachments, ", "))
	}

	return &driven.NormaliseResult{
		Text:   strings.TrimSpace(content.String()),
		Format: "eml",
	}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header // Return original if decoding fails
	}
	return decoded
}

// message collects the readable parts of a MIME tree.
type message struct {
	textParts   []string
	htmlParts   []string
	attachments []string
}

// text prefers plain text parts over HTML ones.
func (m *message) text() string {
	if len(m.textParts) > 0 {
		return strings.TrimSpace(strings.Join(m.textParts, "\n"))
	}
	return strings.TrimSpace(strings.Join(m.htmlParts, "\n"))
}

func (m *message) walk(header textproto.MIMEHeader, body io.Reader, depth int) {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if name := attachmentName(header, params); name != "" {
		m.attachments = append(m.attachments, name)
		return
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxDepth || params["boundary"] == "" {
			return
		}
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextRawPart()
			if err != nil {
				return
			}
			m.walk(part.Header, part, depth+1)
			part.Close()
		}
	}

	data, err := io.ReadAll(transferDecoder(header.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return
	}

	switch mediaType {
	case "text/plain":
		m.textParts = append(m.textParts, plaintext.Decode(data))
	case "text/html":
		if text, err := html.ExtractText(data); err == nil {
			m.htmlParts = append(m.htmlParts, text)
		}
	}
}

func attachmentName(header textproto.MIMEHeader, params map[string]string) string {
	if disposition, dparams, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		if disposition == "attachment" {
			if name := decodeHeader(dparams["filename"]); name != "" {
				return name
			}
			return decodeHeader(params["name"])
		}
	}
	return ""
}

func transferDecoder(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}
