package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/event-service/internal/domain"
)

// ErrVersionConflict is returned when the conditional registration update
// matched no row because the ticket counter moved since it was read.
var ErrVersionConflict = errors.New("event version conflict")

// ErrDuplicateParticipant is returned when the participant insert hits the
// (event_id, user_id) unique constraint.
var ErrDuplicateParticipant = errors.New("user already registered for event")

const uniqueViolationCode = "23505"

const eventColumns = `e.id, e.name, e.description, e.venue, e.date, e.ticket_price,
               e.capacity, e.available_tickets, e.image_url, e.organizer_id,
               (SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id),
               e.created_at, e.updated_at`

// EventFilter narrows List results. Zero values mean no constraint.
type EventFilter struct {
	Venue string
	From  time.Time
}

// EventRepository encapsulates event persistence. Registration goes through
// ConditionalRegister exclusively; the ticket counter is never written via
// separate read and update calls.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Event, error)
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
	ListParticipants(ctx context.Context, eventID string) ([]domain.User, error)
	ConditionalRegister(ctx context.Context, eventID string, expectedTickets int, userID string) (*domain.Event, error)
	AddFeedback(ctx context.Context, feedback *domain.Feedback) error
	ListFeedback(ctx context.Context, eventID string) ([]domain.Feedback, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (name, description, venue, date, ticket_price, capacity, available_tickets, image_url, organizer_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Name,
		event.Description,
		event.Venue,
		event.Date,
		event.TicketPrice,
		event.Capacity,
		event.AvailableTickets,
		event.ImageURL,
		event.OrganizerID,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *eventRepository) Update(ctx context.Context, event *domain.Event) error {
	const query = `
        UPDATE events SET name=$1, description=$2, venue=$3, date=$4, ticket_price=$5,
            available_tickets=$6, image_url=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		event.Name,
		event.Description,
		event.Venue,
		event.Date,
		event.TicketPrice,
		event.AvailableTickets,
		event.ImageURL,
		event.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events e WHERE e.id=$1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events e
        WHERE ($1 = '' OR e.venue ILIKE '%' || $1 || '%')
          AND ($2::timestamptz IS NULL OR e.date >= $2)
        ORDER BY e.created_at DESC`
	var from *time.Time
	if !filter.From.IsZero() {
		from = &filter.From
	}
	rows, err := r.pool.Query(ctx, query, filter.Venue, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListByOrganizer(ctx context.Context, organizerID string) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events e WHERE e.organizer_id=$1 ORDER BY e.created_at DESC`
	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) ListByParticipant(ctx context.Context, userID string) ([]domain.Event, error) {
	const query = `SELECT ` + eventColumns + `
        FROM events e
        JOIN event_participants p ON p.event_id = e.id AND p.user_id = $1
        ORDER BY e.date`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *eventRepository) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id=$1 AND user_id=$2)`,
		eventID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *eventRepository) ListParticipants(ctx context.Context, eventID string) ([]domain.User, error) {
	const query = `
        SELECT u.id, u.name, u.email, u.password_hash, u.role, u.banned, u.profile_picture, u.background_info, u.created_at, u.updated_at
        FROM users u
        JOIN event_participants p ON p.user_id = u.id
        WHERE p.event_id = $1
        ORDER BY p.created_at`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ConditionalRegister applies the registration as one atomic unit: a
// compare-and-swap decrement keyed on the ticket count the caller read, plus
// the participant insert, in a single transaction. Two concurrent callers
// that read the same counter cannot both succeed; the loser gets
// ErrVersionConflict and is expected to re-read and retry.
func (r *eventRepository) ConditionalRegister(ctx context.Context, eventID string, expectedTickets int, userID string) (*domain.Event, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx,
		`UPDATE events
         SET available_tickets = available_tickets - 1, updated_at = NOW()
         WHERE id = $1 AND available_tickets = $2 AND available_tickets > 0`,
		eventID, expectedTickets,
	)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrVersionConflict
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)`,
		eventID, userID,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrDuplicateParticipant
		}
		return nil, err
	}

	event, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id=$1`, eventID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return event, nil
}

func (r *eventRepository) AddFeedback(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO event_feedback (event_id, user_id, comment)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		feedback.EventID,
		feedback.UserID,
		feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

func (r *eventRepository) ListFeedback(ctx context.Context, eventID string) ([]domain.Feedback, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, user_id, comment, created_at
         FROM event_feedback WHERE event_id=$1 ORDER BY created_at`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.EventID, &fb.UserID, &fb.Comment, &fb.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, fb)
	}
	return result, rows.Err()
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var event domain.Event
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Venue,
		&event.Date,
		&event.TicketPrice,
		&event.Capacity,
		&event.AvailableTickets,
		&event.ImageURL,
		&event.OrganizerID,
		&event.ParticipantCount,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &event, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Venue,
			&event.Date,
			&event.TicketPrice,
			&event.Capacity,
			&event.AvailableTickets,
			&event.ImageURL,
			&event.OrganizerID,
			&event.ParticipantCount,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
