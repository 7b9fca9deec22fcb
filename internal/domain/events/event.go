package events

import (
	"strings"
	"time"

	"github.com/gatherly/server/internal/domain/accounts"
)

// Status is the lifecycle state of an event. Only StatusDraft is produced by
// the public create path; the other states exist for data seeded or migrated
// from elsewhere. Status does not gate update authorization (ownership does).
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPublished       Status = "PUBLISHED"
	StatusBeganEnrollment Status = "BEGAN_ENROLLMENT"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusBeganEnrollment:
		return true
	default:
		return false
	}
}

// Event is the stored representation of an event. Free and Offline are
// derived from the price and location fields, never accepted from clients.
type Event struct {
	ID                string
	Name              string
	Description       string
	BeginEnrollment   time.Time
	CloseEnrollment   time.Time
	BeginEvent        time.Time
	EndEvent          time.Time
	BasePrice         int
	MaxPrice          int
	LimitOfEnrollment int
	Location          string
	Free              bool
	Offline           bool
	Status            Status
	Manager           *accounts.Account
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DeriveComputed recomputes the Free and Offline flags from the price and
// location fields. It is total over all inputs and idempotent; calling it
// twice yields the same result.
func (e *Event) DeriveComputed() {
	e.Free = e.BasePrice == 0 && e.MaxPrice == 0
	e.Offline = strings.TrimSpace(e.Location) != ""
}

// ManagedBy reports whether the account with the given id is the manager of
// this event. Ownership is an identity comparison; the admin role does not
// override it. An empty id (anonymous caller) never manages anything.
func (e *Event) ManagedBy(accountID string) bool {
	if e == nil || e.Manager == nil || accountID == "" {
		return false
	}
	return e.Manager.ID == accountID
}

// ApplyInput overwrites all client-mutable fields from in and recomputes the
// derived flags. Identifier, status, and manager are untouched.
func (e *Event) ApplyInput(in Input) {
	e.Name = in.Name
	e.Description = in.Description
	e.BeginEnrollment = in.BeginEnrollment
	e.CloseEnrollment = in.CloseEnrollment
	e.BeginEvent = in.BeginEvent
	e.EndEvent = in.EndEvent
	e.BasePrice = in.BasePrice
	e.MaxPrice = in.MaxPrice
	e.LimitOfEnrollment = in.LimitOfEnrollment
	e.Location = in.Location
	e.DeriveComputed()
}
