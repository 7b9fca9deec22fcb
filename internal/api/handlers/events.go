package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gatherly/server/internal/api/hal"
	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/api/pagination"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/ids"
	"github.com/gatherly/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Documentation anchors advertised through the profile link.
const (
	profileCreate = "/docs/index.html#resources-events-create"
	profileList   = "/docs/index.html#resources-events-list"
	profileGet    = "/docs/index.html#resources-events-get"
	profileUpdate = "/docs/index.html#resources-events-update"
)

type EventsHandler struct {
	Service *events.Service
	BaseURL string
}

func NewEventsHandler(service *events.Service, baseURL string) *EventsHandler {
	return &EventsHandler{Service: service, BaseURL: strings.TrimRight(baseURL, "/")}
}

// eventResource is the wire shape of one event. The manager is reduced to an
// id so password hashes and emails never leave the server.
type eventResource struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	BeginEnrollment   time.Time        `json:"beginEnrollmentDateTime"`
	CloseEnrollment   time.Time        `json:"closeEnrollmentDateTime"`
	BeginEvent        time.Time        `json:"beginEventDateTime"`
	EndEvent          time.Time        `json:"endEventDateTime"`
	Location          string           `json:"location"`
	BasePrice         int              `json:"basePrice"`
	MaxPrice          int              `json:"maxPrice"`
	LimitOfEnrollment int              `json:"limitOfEnrollment"`
	Offline           bool             `json:"offline"`
	Free              bool             `json:"free"`
	Status            events.Status    `json:"eventStatus"`
	Manager           *managerResource `json:"manager,omitempty"`
	Links             hal.Links        `json:"_links"`
}

type managerResource struct {
	ID string `json:"id"`
}

func newEventResource(event *events.Event, links hal.Links) eventResource {
	resource := eventResource{
		ID:                event.ID,
		Name:              event.Name,
		Description:       event.Description,
		BeginEnrollment:   event.BeginEnrollment,
		CloseEnrollment:   event.CloseEnrollment,
		BeginEvent:        event.BeginEvent,
		EndEvent:          event.EndEvent,
		Location:          event.Location,
		BasePrice:         event.BasePrice,
		MaxPrice:          event.MaxPrice,
		LimitOfEnrollment: event.LimitOfEnrollment,
		Offline:           event.Offline,
		Free:              event.Free,
		Status:            event.Status,
		Links:             links,
	}
	if event.Manager != nil {
		resource.Manager = &managerResource{ID: event.Manager.ID}
	}
	return resource
}

func (h *EventsHandler) eventPath(id string) string {
	return "/api/events/" + id
}

// decodeInput parses the request body strictly: unknown properties are
// rejected, so a client sending id, free, or eventStatus gets a 400 instead
// of silently losing those fields.
func decodeInput(r *http.Request) (events.Input, error) {
	var in events.Input
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&in); err != nil {
		return events.Input{}, err
	}
	return in, nil
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(r)
	if err != nil {
		writeBadRequest(w, "eventInput", "", "request body is not a valid event: "+err.Error())
		return
	}

	account := middleware.AccountFromContext(r.Context())
	event, err := h.Service.Create(r.Context(), in, account)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}

	metrics.EventsCreated.Inc()

	links := hal.NewLinks().
		Add("self", h.eventPath(event.ID)).
		Add("query-events", "/api/events").
		Add("update-event", h.eventPath(event.ID)).
		Add("profile", profileCreate)

	w.Header().Set("Location", h.BaseURL+h.eventPath(event.ID))
	hal.WriteJSON(w, http.StatusCreated, newEventResource(event, links))
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	// A malformed id can never name an event, so skip the lookup.
	if err := ids.ValidateULID(id); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	callerID := ""
	if account := middleware.AccountFromContext(r.Context()); account != nil {
		callerID = account.ID
	}

	event, manages, err := h.Service.Get(r.Context(), id, callerID)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}

	links := hal.NewLinks().
		Add("self", h.eventPath(event.ID)).
		Add("profile", profileGet)
	if manages {
		links.Add("update-event", h.eventPath(event.ID))
	}

	hal.WriteJSON(w, http.StatusOK, newEventResource(event, links))
}

// listBody is the paged HAL collection for events.
type listBody struct {
	Embedded listEmbedded        `json:"_embedded"`
	Links    hal.Links           `json:"_links"`
	Page     pagination.PageMeta `json:"page"`
}

type listEmbedded struct {
	EventList []eventResource `json:"eventList"`
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		var paramErr pagination.ParamError
		if errors.As(err, &paramErr) {
			writeBadRequest(w, "pageRequest", paramErr.Param, paramErr.Message)
			return
		}
		writeBadRequest(w, "pageRequest", "", err.Error())
		return
	}

	result, err := h.Service.List(r.Context(), page)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}

	resources := make([]eventResource, 0, len(result.Events))
	for _, event := range result.Events {
		itemLinks := hal.NewLinks().Add("self", h.eventPath(event.ID))
		resources = append(resources, newEventResource(event, itemLinks))
	}

	links := pagination.Links("/api/events", page, result.TotalElements)
	links.Add("profile", profileList)
	// The create affordance only renders for authenticated callers.
	if middleware.AccountFromContext(r.Context()) != nil {
		links.Add("create-event", "/api/events")
	}

	hal.WriteJSON(w, http.StatusOK, listBody{
		Embedded: listEmbedded{EventList: resources},
		Links:    links,
		Page:     pagination.Meta(page, result.TotalElements),
	})
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	// Checked before the body: a nonexistent target outranks a bad payload.
	if err := ids.ValidateULID(id); err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	in, err := decodeInput(r)
	if err != nil {
		writeBadRequest(w, "eventInput", "", "request body is not a valid event: "+err.Error())
		return
	}

	callerID := ""
	if account := middleware.AccountFromContext(r.Context()); account != nil {
		callerID = account.ID
	}

	event, err := h.Service.Update(r.Context(), id, in, callerID)
	if err != nil {
		h.writeEventError(w, r, err)
		return
	}

	metrics.EventsUpdated.Inc()

	links := hal.NewLinks().
		Add("self", h.eventPath(event.ID)).
		Add("profile", profileUpdate)

	hal.WriteJSON(w, http.StatusOK, newEventResource(event, links))
}

// writeEventError maps domain errors to statuses. Ownership failures are 403
// even for anonymous callers: the resource exists and reads are public, so
// 401 would be wrong and 404 would hide it.
func (h *EventsHandler) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs events.ValidationErrors
	switch {
	case errors.Is(err, events.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, events.ErrForbidden):
		w.WriteHeader(http.StatusForbidden)
	case errors.As(err, &validationErrs):
		writeValidationErrors(w, validationErrs)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("event operation failed")
		w.WriteHeader(http.StatusInternalServerError)
	}
}
