package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erazemk/aquagest/internal/model"
	"github.com/erazemk/aquagest/internal/router"
)

type submitForm struct {
	Quantity string
	PointID  int64
	Type     model.RequestType
}

type submitPage struct {
	PageData
	Form    submitForm
	Points  []model.SupplyPoint
	Types   []model.RequestType
	Created *model.CreatedRequest
}

func (s *Server) submitRequestView(w http.ResponseWriter, r *http.Request) {
	s.renderSubmit(w, r, http.StatusOK, &submitPage{
		PageData: s.page(r, router.SubmitRequest.Label()),
		Form:     submitForm{Type: model.RequestTypeDomiciliary},
	})
}

// renderSubmit fills in the supply points and renders the request form.
func (s *Server) renderSubmit(w http.ResponseWriter, r *http.Request, status int, data *submitPage) {
	points, err := s.Backend.ListSupplyPoints(r.Context())
	if err != nil {
		msg := s.backendMessage(r, "list supply points", err)
		if data.Error == "" {
			data.Error = msg
		}
	}
	data.Points = activePoints(points)
	data.Types = model.RequestTypes
	s.renderViewStatus(w, r, status, "submit_request.html", data)
}

func activePoints(points []model.SupplyPoint) []model.SupplyPoint {
	var out []model.SupplyPoint
	for _, p := range points {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out
}

// SubmitRequest handles POST /v/submit-request.
func (s *Server) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.allow(w, r, router.SubmitRequest)
	if !ok {
		return
	}

	form := submitForm{
		Quantity: strings.TrimSpace(r.FormValue("cantidad")),
		Type:     model.RequestType(r.FormValue("tipo_solicitud")),
	}
	form.PointID, _ = strconv.ParseInt(r.FormValue("id_punto"), 10, 64)

	data := &submitPage{PageData: s.page(r, router.SubmitRequest.Label()), Form: form}
	data.View = router.SubmitRequest

	quantity, err := decimal.NewFromString(form.Quantity)
	if err != nil {
		data.Error = "La cantidad debe ser un número."
		s.renderSubmit(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	created, err := s.Backend.CreateRequest(r.Context(), model.NewRequest{
		Code:  model.NewRequestCode(),
		Type:  form.Type,
		Items: []model.LineItem{{PointID: form.PointID, Quantity: quantity}},
	})
	if err != nil {
		data.Error = s.backendMessage(r, "create request", err)
		s.renderSubmit(w, r, http.StatusUnprocessableEntity, data)
		return
	}

	slog.Info("request submitted", "user_id", sess.UserID, "code", created.Code, "id", created.ID)
	data.Success = "Solicitud enviada. Código: " + created.Code
	data.Created = created
	data.Form = submitForm{Type: model.RequestTypeDomiciliary}
	s.renderSubmit(w, r, http.StatusOK, data)
}

type requestsPage struct {
	PageData
	Requests []model.Request
	Types    []model.RequestType
	Filter   model.RequestType
	// Moderation shows the requester column and the type filter.
	Moderation bool
}

func (s *Server) ownRequestsView(w http.ResponseWriter, r *http.Request) {
	data := &requestsPage{PageData: s.page(r, router.ListOwnRequests.Label())}

	requests, err := s.Backend.ListRequests(r.Context())
	if err != nil {
		data.Error = s.backendMessage(r, "list requests", err)
	}
	data.Requests = requests
	s.renderView(w, r, "requests.html", data)
}

func (s *Server) moderateView(w http.ResponseWriter, r *http.Request) {
	data := &requestsPage{
		PageData:   s.page(r, router.ModerateRequests.Label()),
		Types:      model.RequestTypes,
		Filter:     model.RequestType(r.URL.Query().Get("tipo")),
		Moderation: true,
	}

	requests, err := s.Backend.ListRequests(r.Context())
	if err != nil {
		data.Error = s.backendMessage(r, "list requests", err)
	}
	data.Requests = filterRequests(requests, data.Filter)
	s.renderView(w, r, "requests.html", data)
}

// filterRequests keeps requests of type t. An empty t keeps everything.
func filterRequests(requests []model.Request, t model.RequestType) []model.Request {
	if t == "" {
		return requests
	}
	var out []model.Request
	for _, req := range requests {
		if req.Type == t {
			out = append(out, req)
		}
	}
	return out
}
