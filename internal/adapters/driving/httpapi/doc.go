// Package httpapi serves the search backend over HTTP/JSON.
//
// Routes live under /api and are served by a go-restful container wrapped
// in CORS handling. Request bodies are checked against JSON Schemas before
// they are decoded. Every failure is reported as an ErrorResponse whose
// kind is one of the domain error kinds.
package httpapi
