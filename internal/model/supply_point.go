package model

import "github.com/shopspring/decimal"

// SupplyPoint is a location that dispenses water.
type SupplyPoint struct {
	ID       int64           `json:"id_punto"`
	Code     string          `json:"codigo_punto"`
	Address  string          `json:"direccion"`
	Capacity decimal.Decimal `json:"capacidad"`
	Status   string          `json:"estado"`
}

// Supply point statuses.
const (
	PointStatusActive   = "ACTIVO"
	PointStatusInactive = "INACTIVO"
)

// Active reports whether the point is dispensing.
func (p SupplyPoint) Active() bool {
	return p.Status == PointStatusActive
}
