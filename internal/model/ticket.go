package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket authorizes pickup of a quantity of water at a point and date.
// Tickets are issued and tracked locally; the backend has no ticket endpoint.
type Ticket struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Holder      string          `json:"holder"`
	Quantity    decimal.Decimal `json:"quantity"`
	PickupDate  time.Time       `json:"pickup_date"`
	PickupPoint string          `json:"pickup_point"`
	Status      string          `json:"status"`
	IssuedBy    int64           `json:"issued_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UsedAt      *time.Time      `json:"used_at,omitempty"`
}

// Ticket statuses.
const (
	TicketStatusActive = "ACTIVE"
	TicketStatusUsed   = "USED"
)

// NewTicket holds the fields an advisor fills in to issue a ticket.
type NewTicket struct {
	Holder      string          `json:"holder" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity" validate:"positive"`
	PickupDate  time.Time       `json:"pickup_date" validate:"required"`
	PickupPoint string          `json:"pickup_point" validate:"required"`
}
