package normalisers

import (
	"github.com/k3ss-official/k3ss-search/internal/normalisers/archive"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/docx"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/eml"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/html"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/odf"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/pdf"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/plaintext"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/pptx"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/xlsx"
)

// RegisterDefaults registers every built-in normaliser.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(html.New())
	r.Register(eml.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(pptx.New())
	r.Register(odf.New())
	r.Register(pdf.New())
	r.Register(archive.New())
}

// NewDefaultRegistry returns a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
