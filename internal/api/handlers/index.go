package handlers

import (
	"net/http"

	"github.com/gatherly/server/internal/api/hal"
)

type indexBody struct {
	Links hal.Links `json:"_links"`
}

// Index is the API root document. Clients discover the event collection from
// here instead of hard-coding paths.
func Index(w http.ResponseWriter, _ *http.Request) {
	hal.WriteJSON(w, http.StatusOK, indexBody{
		Links: hal.NewLinks().Add("events", "/api/events"),
	})
}
