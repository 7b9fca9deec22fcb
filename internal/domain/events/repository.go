package events

import "context"

// SortDirection orders a listing.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Page describes offset pagination with an optional sort. Number is
// zero-based. Implementations only accept whitelisted sort keys; Parse in
// the pagination package enforces the whitelist before a Page reaches a
// repository.
type Page struct {
	Number    int
	Size      int
	SortKey   string
	Direction SortDirection
}

func (p Page) Offset() int {
	return p.Number * p.Size
}

// ListResult is one page of events plus the total count needed to build
// pagination links.
type ListResult struct {
	Events        []*Event
	TotalElements int
}

func (r ListResult) TotalPages(size int) int {
	if size <= 0 {
		return 0
	}
	return (r.TotalElements + size - 1) / size
}

// Repository is the persistence boundary for events. The store assigns no
// semantics beyond single-record atomicity; all business rules run above it.
type Repository interface {
	Create(ctx context.Context, event *Event) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, page Page) (ListResult, error)
	Update(ctx context.Context, event *Event) (*Event, error)
}
