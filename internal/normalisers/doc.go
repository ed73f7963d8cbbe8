// Package normalisers provides implementations of the Normaliser interface
// for various file formats. Each normaliser knows how to extract searchable
// text from the extensions it declares.
//
// Normalisers are registered with the Registry at startup; see
// RegisterDefaults.
package normalisers
