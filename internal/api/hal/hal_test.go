package hal

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinksAdd(t *testing.T) {
	links := NewLinks().
		Add("self", "/api/events/1").
		Add("profile", "/docs/index.html#resources-events-get")

	require.Equal(t, "/api/events/1", links["self"].Href)
	require.Equal(t, "/docs/index.html#resources-events-get", links["profile"].Href)
}

func TestLinksMarshal(t *testing.T) {
	links := NewLinks().Add("self", "/api/events")

	data, err := json.Marshal(links)

	require.NoError(t, err)
	require.JSONEq(t, `{"self":{"href":"/api/events"}}`, string(data))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	WriteJSON(rec, 201, map[string]string{"name": "Gatherly"})

	require.Equal(t, 201, rec.Code)
	require.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"name":"Gatherly"}`, rec.Body.String())
}
