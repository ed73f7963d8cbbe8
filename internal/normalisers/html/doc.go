// Package html provides a Normaliser implementation for HTML documents.
// It extracts the readable text of a page, dropping scripts, styles and
// markup so that deep searches match what a reader would see.
package html
