package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/router"
	"github.com/erazemk/aquagest/internal/store"
)

type ticketForm struct {
	Holder      string
	Quantity    string
	PickupDate  string
	PickupPoint string
}

type ticketsPage struct {
	PageData
	Tickets []model.Ticket
	Points  []model.SupplyPoint
	Form    ticketForm
	Issued  *model.Ticket
}

func (s *Server) ticketsView(w http.ResponseWriter, r *http.Request) {
	s.renderTickets(w, r, http.StatusOK, &ticketsPage{PageData: s.page(r, router.IssueTickets.Label())})
}

func (s *Server) renderTickets(w http.ResponseWriter, r *http.Request, status int, data *ticketsPage) {
	tickets, err := store.ListTickets(r.Context(), s.DB, "")
	if err != nil {
		slog.Error("failed to list tickets", "error", err)
		data.Error = "No se pudieron cargar los tickets."
	}
	data.Tickets = tickets

	// Supply points only feed the pickup point suggestions.
	points, err := s.Backend.ListSupplyPoints(r.Context())
	if err != nil {
		slog.Warn("failed to list supply points for tickets", "error", err)
	}
	data.Points = activePoints(points)

	data.View = router.IssueTickets
	s.renderViewStatus(w, r, status, "tickets.html", data)
}

// IssueTicket handles POST /v/issue-tickets.
func (s *Server) IssueTicket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.allow(w, r, router.IssueTickets)
	if !ok {
		return
	}

	form := ticketForm{
		Holder:      strings.TrimSpace(r.FormValue("holder")),
		Quantity:    strings.TrimSpace(r.FormValue("quantity")),
		PickupDate:  strings.TrimSpace(r.FormValue("pickup_date")),
		PickupPoint: strings.TrimSpace(r.FormValue("pickup_point")),
	}
	data := &ticketsPage{PageData: s.page(r, router.IssueTickets.Label()), Form: form}

	quantity, err := decimal.NewFromString(form.Quantity)
	if err != nil {
		data.Error = "La cantidad debe ser un número."
		s.renderTickets(w, r, http.StatusUnprocessableEntity, data)
		return
	}
	pickup, err := time.Parse("2006-01-02", form.PickupDate)
	if err != nil {
		data.Error = "La fecha de retiro no es válida."
		s.renderTickets(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	ticket, err := store.IssueTicket(r.Context(), s.DB, model.NewTicket{
		Holder:      form.Holder,
		Quantity:    quantity,
		PickupDate:  pickup,
		PickupPoint: form.PickupPoint,
	}, sess.UserID)
	if err != nil {
		if !errors.Is(err, model.ErrInvalidRequest) {
			slog.Error("failed to issue ticket", "error", err)
		}
		data.Error = err.Error()
		s.renderTickets(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	slog.Info("ticket issued", "user_id", sess.UserID, "code", ticket.Code)
	data.Form = ticketForm{}
	data.Issued = ticket
	data.Success = "Ticket generado: " + ticket.Code
	s.renderTickets(w, r, http.StatusOK, data)
}

// MarkTicketUsed handles POST /v/issue-tickets/{id}/used.
func (s *Server) MarkTicketUsed(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.allow(w, r, router.IssueTickets)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data := &ticketsPage{PageData: s.page(r, router.IssueTickets.Label())}

	ticket, err := store.MarkTicketUsed(r.Context(), s.DB, id)
	switch {
	case errors.Is(err, store.ErrTicketUsed):
		data.Error = "El ticket ya fue usado."
		s.renderTickets(w, r, http.StatusConflict, data)
		return
	case err != nil:
		slog.Error("failed to mark ticket used", "error", err)
		data.Error = "No se pudo marcar el ticket."
		s.renderTickets(w, r, http.StatusInternalServerError, data)
		return
	case ticket == nil:
		data.Error = "El ticket no existe."
		s.renderTickets(w, r, http.StatusNotFound, data)
		return
	}

	slog.Info("ticket used", "user_id", sess.UserID, "code", ticket.Code)
	http.Redirect(w, r, viewPath(router.IssueTickets), http.StatusSeeOther)
}
