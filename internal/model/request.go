package model

import (
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// RequestType classifies a water-supply request.
type RequestType string

// Request types.
const (
	RequestTypeDomiciliary RequestType = "DOMICILIARIA"
	RequestTypeCommercial  RequestType = "COMERCIAL"
	RequestTypeIndustrial  RequestType = "INDUSTRIAL"
	RequestTypeEmergency   RequestType = "EMERGENCIA"
)

// RequestTypes lists every request type in display order.
var RequestTypes = []RequestType{
	RequestTypeDomiciliary,
	RequestTypeCommercial,
	RequestTypeIndustrial,
	RequestTypeEmergency,
}

// Label returns the display name of the request type.
func (t RequestType) Label() string {
	switch t {
	case RequestTypeDomiciliary:
		return "Domiciliaria"
	case RequestTypeCommercial:
		return "Comercial"
	case RequestTypeIndustrial:
		return "Industrial"
	case RequestTypeEmergency:
		return "Emergencia"
	default:
		return string(t)
	}
}

// Request is a water-supply request as listed by the backend.
type Request struct {
	ID          int64       `json:"id_solicitud"`
	Code        string      `json:"codigo_solicitud"`
	Type        RequestType `json:"tipo_solicitud"`
	RequesterID int64       `json:"id_usuario_solicitante"`
	SubmittedAt Timestamp   `json:"fecha_solicitud"`
	AdvisorID   *int64      `json:"id_asesor,omitempty"`
	Items       []LineItem  `json:"detalles,omitempty"`
}

// LineItem is a quantity requested from one supply point.
type LineItem struct {
	PointID  int64           `json:"id_punto" validate:"gt=0"`
	Quantity decimal.Decimal `json:"cantidad_solicitada" validate:"positive"`
}

// NewRequest is the payload for submitting a request.
type NewRequest struct {
	Code  string      `json:"codigo_solicitud" validate:"required,min=5"`
	Type  RequestType `json:"tipo_solicitud" validate:"required,oneof=DOMICILIARIA COMERCIAL INDUSTRIAL EMERGENCIA"`
	Items []LineItem  `json:"detalles" validate:"min=1,dive"`
}

// CreatedRequest is the backend's acknowledgement of a submitted request.
type CreatedRequest struct {
	Message string `json:"message"`
	ID      int64  `json:"solicitud_id"`
	Code    string `json:"codigo"`
}

var (
	codeEntropyMu sync.Mutex
	codeEntropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// NewRequestCode returns a unique, time-ordered request code.
func NewRequestCode() string {
	codeEntropyMu.Lock()
	defer codeEntropyMu.Unlock()
	return "SOL-" + ulid.MustNew(ulid.Timestamp(time.Now()), codeEntropy).String()
}
