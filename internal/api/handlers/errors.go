package handlers

import (
	"net/http"

	"github.com/gatherly/server/internal/api/hal"
	"github.com/gatherly/server/internal/domain/events"
)

// errorBody is the validation error document. The index link points clients
// back to the API root so they can recover navigation after a rejected
// request.
type errorBody struct {
	Errors events.ValidationErrors `json:"errors"`
	Links  hal.Links               `json:"_links"`
}

func writeValidationErrors(w http.ResponseWriter, errs events.ValidationErrors) {
	hal.WriteJSON(w, http.StatusBadRequest, errorBody{
		Errors: errs,
		Links:  hal.NewLinks().Add("index", "/api"),
	})
}

// writeBadRequest reports a request-level failure (malformed JSON, unknown
// properties, unusable query parameters) in the same document shape as field
// validation so clients parse one error format.
func writeBadRequest(w http.ResponseWriter, objectName, field, message string) {
	writeValidationErrors(w, events.ValidationErrors{{
		ObjectName:     objectName,
		Field:          field,
		Code:           "invalid",
		DefaultMessage: message,
	}})
}
