// Package pdf provides a Normaliser for PDF documents.
//
// Text is extracted with the pdftotext tool from poppler when it is on the
// PATH. Without it the pure Go x2md converter is used, which handles
// simple text PDFs.
package pdf
