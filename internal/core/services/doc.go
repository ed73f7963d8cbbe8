// Package services implements the driving port interfaces.
// Services contain the core logic of discovery, search and formatting
// and reach the host only through driven ports.
//
// The content loader decodes text with the plaintext normaliser helpers,
// which are pure functions over bytes.
package services
