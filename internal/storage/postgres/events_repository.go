package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// withTx runs fn against a transaction-scoped view of this repository. The
// write paths use it so a statement and its read-back observe one snapshot.
func (r *EventRepository) withTx(ctx context.Context, fn func(*EventRepository) error) error {
	root := &Repository{pool: r.pool}
	return root.WithTx(ctx, func(ctx context.Context, scoped storage.Repository) error {
		return fn(scoped.Events().(*EventRepository))
	})
}

// sortColumns maps the whitelisted sort keys to their columns. The key set
// must stay in lockstep with the pagination parser; anything else would let a
// query parameter reach ORDER BY.
var sortColumns = map[string]string{
	"id":                 "e.id",
	"name":               "e.name",
	"beginEventDateTime": "e.begin_event",
	"basePrice":          "e.base_price",
	"eventStatus":        "e.status",
}

const eventColumns = `
e.id, e.name, e.description,
e.begin_enrollment, e.close_enrollment, e.begin_event, e.end_event,
e.base_price, e.max_price, e.limit_of_enrollment, e.location,
e.free, e.offline, e.status, e.created_at, e.updated_at,
a.id, a.email, a.roles`

type eventRow struct {
	ID                string
	Name              string
	Description       *string
	BeginEnrollment   pgtype.Timestamptz
	CloseEnrollment   pgtype.Timestamptz
	BeginEvent        pgtype.Timestamptz
	EndEvent          pgtype.Timestamptz
	BasePrice         int
	MaxPrice          int
	LimitOfEnrollment int
	Location          *string
	Free              bool
	Offline           bool
	Status            string
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
	ManagerID         *string
	ManagerEmail      *string
	ManagerRoles      []string
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var r eventRow
	if err := row.Scan(
		&r.ID, &r.Name, &r.Description,
		&r.BeginEnrollment, &r.CloseEnrollment, &r.BeginEvent, &r.EndEvent,
		&r.BasePrice, &r.MaxPrice, &r.LimitOfEnrollment, &r.Location,
		&r.Free, &r.Offline, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		&r.ManagerID, &r.ManagerEmail, &r.ManagerRoles,
	); err != nil {
		return nil, err
	}
	return r.toEvent(), nil
}

// derefString turns a nullable text column into the empty string the domain
// types use for "not set".
func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func (r eventRow) toEvent() *events.Event {
	event := &events.Event{
		ID:                r.ID,
		Name:              r.Name,
		Description:       derefString(r.Description),
		BeginEnrollment:   r.BeginEnrollment.Time,
		CloseEnrollment:   r.CloseEnrollment.Time,
		BeginEvent:        r.BeginEvent.Time,
		EndEvent:          r.EndEvent.Time,
		BasePrice:         r.BasePrice,
		MaxPrice:          r.MaxPrice,
		LimitOfEnrollment: r.LimitOfEnrollment,
		Location:          derefString(r.Location),
		Free:              r.Free,
		Offline:           r.Offline,
		Status:            events.Status(r.Status),
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
	if r.ManagerID != nil {
		roles := make([]accounts.Role, 0, len(r.ManagerRoles))
		for _, role := range r.ManagerRoles {
			roles = append(roles, accounts.Role(role))
		}
		event.Manager = &accounts.Account{
			ID:    *r.ManagerID,
			Email: derefString(r.ManagerEmail),
			Roles: roles,
		}
	}
	return event
}

func (r *EventRepository) Create(ctx context.Context, event *events.Event) (*events.Event, error) {
	if r.tx == nil {
		var created *events.Event
		if err := r.withTx(ctx, func(txRepo *EventRepository) error {
			var err error
			created, err = txRepo.Create(ctx, event)
			return err
		}); err != nil {
			return nil, err
		}
		return created, nil
	}

	var managerID *string
	if event.Manager != nil {
		managerID = &event.Manager.ID
	}

	_, err := r.queryer().Exec(ctx, `
INSERT INTO events (
    id, name, description,
    begin_enrollment, close_enrollment, begin_event, end_event,
    base_price, max_price, limit_of_enrollment, location,
    free, offline, status, manager_id
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`,
		event.ID, event.Name, event.Description,
		event.BeginEnrollment, event.CloseEnrollment, event.BeginEvent, event.EndEvent,
		event.BasePrice, event.MaxPrice, event.LimitOfEnrollment, event.Location,
		event.Free, event.Offline, string(event.Status), managerID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	return r.GetByID(ctx, event.ID)
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
  LEFT JOIN accounts a ON a.id = e.manager_id
 WHERE e.id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) List(ctx context.Context, page events.Page) (events.ListResult, error) {
	q := r.queryer()

	var total int
	if err := q.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&total); err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	column, ok := sortColumns[page.SortKey]
	if !ok {
		return events.ListResult{}, fmt.Errorf("list events: unsupported sort key %q", page.SortKey)
	}
	direction := "ASC"
	if page.Direction == events.SortDesc {
		direction = "DESC"
	}

	// Secondary id ordering makes pages stable when the sort column has
	// duplicate values.
	rows, err := q.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
  LEFT JOIN accounts a ON a.id = e.manager_id
 ORDER BY `+column+` `+direction+`, e.id `+direction+`
 LIMIT $1 OFFSET $2
`, page.Size, page.Offset())
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]*events.Event, 0, page.Size)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return events.ListResult{}, fmt.Errorf("scan event: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}

	return events.ListResult{Events: items, TotalElements: total}, nil
}

func (r *EventRepository) Update(ctx context.Context, event *events.Event) (*events.Event, error) {
	if r.tx == nil {
		var updated *events.Event
		if err := r.withTx(ctx, func(txRepo *EventRepository) error {
			var err error
			updated, err = txRepo.Update(ctx, event)
			return err
		}); err != nil {
			return nil, err
		}
		return updated, nil
	}

	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET name = $2, description = $3,
       begin_enrollment = $4, close_enrollment = $5, begin_event = $6, end_event = $7,
       base_price = $8, max_price = $9, limit_of_enrollment = $10, location = $11,
       free = $12, offline = $13, status = $14,
       updated_at = now()
 WHERE id = $1
`,
		event.ID, event.Name, event.Description,
		event.BeginEnrollment, event.CloseEnrollment, event.BeginEvent, event.EndEvent,
		event.BasePrice, event.MaxPrice, event.LimitOfEnrollment, event.Location,
		event.Free, event.Offline, string(event.Status),
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, events.ErrNotFound
	}

	return r.GetByID(ctx, event.ID)
}
