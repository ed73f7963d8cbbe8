package httpapi

import (
	"net/http"

	"github.com/emicklei/go-restful/v3"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// StatusClientClosedRequest is returned for a cancelled search.
const StatusClientClosedRequest = 499

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool             `json:"success"`
	Error   string           `json:"error"`
	Kind    domain.ErrorKind `json:"kind"`
}

// statusFor maps an error kind to an HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindPathInaccessible:
		return http.StatusForbidden
	case domain.KindResourceLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case domain.KindCancelled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse with the matching status.
func writeError(resp *restful.Response, err error) {
	kind := domain.KindOf(err)
	resp.WriteHeaderAndEntity(statusFor(kind), ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Kind:    kind,
	}) //nolint:errcheck
}
