package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/aquagest/internal/model"
)

// ErrTicketUsed is returned when marking a ticket that was already used.
var ErrTicketUsed = errors.New("ticket already used")

// pickupLayout is how pickup dates are stored. Only the day matters.
const pickupLayout = "2006-01-02"

// NewTicketCode returns a fresh ticket code.
func NewTicketCode() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// IssueTicket validates and records a new active ticket.
func IssueTicket(ctx context.Context, db *sql.DB, nt model.NewTicket, issuedBy int64) (*model.Ticket, error) {
	if err := model.Validate(nt); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO tickets (code, holder, quantity, pickup_date, pickup_point, status, issued_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		NewTicketCode(), strings.TrimSpace(nt.Holder), nt.Quantity.String(),
		nt.PickupDate.Format(pickupLayout), strings.TrimSpace(nt.PickupPoint),
		model.TicketStatusActive, issuedBy, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting ticket: %w", err)
	}

	id, _ := result.LastInsertId()
	return GetTicket(ctx, db, id)
}

const ticketColumns = `id, code, holder, quantity, pickup_date, pickup_point, status, issued_by, created_at, used_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	t := &model.Ticket{}
	var pickup string
	var usedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.Code, &t.Holder, &t.Quantity, &pickup,
		&t.PickupPoint, &t.Status, &t.IssuedBy, &t.CreatedAt, &usedAt); err != nil {
		return nil, err
	}
	// The driver may hand DATE columns back with a time part.
	if len(pickup) > len(pickupLayout) {
		pickup = pickup[:len(pickupLayout)]
	}
	d, err := time.Parse(pickupLayout, pickup)
	if err != nil {
		return nil, fmt.Errorf("parsing pickup date %q: %w", pickup, err)
	}
	t.PickupDate = d
	if usedAt.Valid {
		u := usedAt.Time
		t.UsedAt = &u
	}
	return t, nil
}

// GetTicket returns a ticket by ID, or nil when it does not exist.
func GetTicket(ctx context.Context, db *sql.DB, id int64) (*model.Ticket, error) {
	t, err := scanTicket(db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting ticket: %w", err)
	}
	return t, nil
}

// ListTickets returns tickets newest first, optionally filtered by status.
func ListTickets(ctx context.Context, db *sql.DB, status string) ([]model.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// MarkTicketUsed flips an active ticket to used. It returns nil, nil when
// the ticket does not exist and ErrTicketUsed when it was already used.
func MarkTicketUsed(ctx context.Context, db *sql.DB, id int64) (*model.Ticket, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE tickets SET status = ?, used_at = ? WHERE id = ? AND status = ?`,
		model.TicketStatusUsed, time.Now().UTC(), id, model.TicketStatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("marking ticket used: %w", err)
	}

	n, _ := result.RowsAffected()
	t, err := GetTicket(ctx, db, id)
	if err != nil || t == nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrTicketUsed
	}
	return t, nil
}
