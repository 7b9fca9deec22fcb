// Package hal renders application/hal+json hypermedia documents: plain
// resource state plus a _links object keyed by relation.
package hal

import (
	"encoding/json"
	"net/http"
)

const ContentType = "application/hal+json"

// Link is a single hypermedia link.
type Link struct {
	Href string `json:"href"`
}

// Links maps a relation name to its link.
type Links map[string]Link

func NewLinks() Links {
	return Links{}
}

// Add sets the link for rel and returns the map for chaining.
func (l Links) Add(rel, href string) Links {
	l[rel] = Link{Href: href}
	return l
}

// WriteJSON writes payload as a HAL document. Encoding failures after the
// header is flushed cannot be reported to the client; they surface in the
// request log through the wrapped writer's error.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
