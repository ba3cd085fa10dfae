package models

import (
	"time"
)

// LifeArea represents one of the eleven fixed life areas an instante is tagged with
type LifeArea string

const (
	AreaSalud          LifeArea = "salud"
	AreaFamilia        LifeArea = "familia"
	AreaAmistades      LifeArea = "amistades"
	AreaAmor           LifeArea = "amor"
	AreaTrabajo        LifeArea = "trabajo"
	AreaDinero         LifeArea = "dinero"
	AreaCrecimiento    LifeArea = "crecimiento"
	AreaOcio           LifeArea = "ocio"
	AreaEspiritualidad LifeArea = "espiritualidad"
	AreaHogar          LifeArea = "hogar"
	AreaComunidad      LifeArea = "comunidad"
)

// LifeAreas lists every valid area in display order
var LifeAreas = []LifeArea{
	AreaSalud, AreaFamilia, AreaAmistades, AreaAmor, AreaTrabajo,
	AreaDinero, AreaCrecimiento, AreaOcio, AreaEspiritualidad,
	AreaHogar, AreaComunidad,
}

// InstanteTipo distinguishes a reflection from a recorded action
type InstanteTipo string

const (
	TipoPensamiento InstanteTipo = "pensamiento"
	TipoAccion      InstanteTipo = "accion"
)

// InstanteEstado represents the publication state of an instante
type InstanteEstado string

const (
	EstadoBorrador  InstanteEstado = "borrador"
	EstadoPublicado InstanteEstado = "publicado"
)

// Instante represents a single dated journal entry
type Instante struct {
	ID        string         `json:"id" db:"id"`
	UserID    string         `json:"user_id" db:"user_id"`
	Title     string         `json:"title" db:"title"`
	Date      time.Time      `json:"date" db:"date"`
	Area      LifeArea       `json:"area" db:"area"`
	Tipo      InstanteTipo   `json:"tipo" db:"tipo"`
	Contenido string         `json:"contenido" db:"contenido"`
	Estado    InstanteEstado `json:"estado" db:"estado"`
	// Privado is nullable: rows written before the field existed carry
	// NULL, which reads as public. Use EffectivePrivado.
	Privado   *bool     `json:"privado,omitempty" db:"privado"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectivePrivado resolves the nullable privacy flag: absent means public.
func (i *Instante) EffectivePrivado() bool {
	return i.Privado != nil && *i.Privado
}

// EffectiveEstado resolves a missing estado: absent means published.
func (i *Instante) EffectiveEstado() InstanteEstado {
	if i.Estado == "" {
		return EstadoPublicado
	}
	return i.Estado
}

// IsPublic reports whether the instante is readable by anonymous visitors
func (i *Instante) IsPublic() bool {
	return i.EffectiveEstado() == EstadoPublicado && !i.EffectivePrivado()
}

// CreateInstanteRequest represents a request to create a journal entry
type CreateInstanteRequest struct {
	Title     string `json:"title" validate:"required"`
	Date      string `json:"date" validate:"required"` // YYYY-MM-DD
	Area      string `json:"area" validate:"required"`
	Tipo      string `json:"tipo" validate:"oneof=pensamiento accion"`
	Contenido string `json:"contenido" validate:"required"`
	Estado    string `json:"estado" validate:"omitempty,oneof=borrador publicado"`
	Privado   *bool  `json:"privado"`
}

// UpdateInstanteRequest represents a partial update to a journal entry
type UpdateInstanteRequest struct {
	Title     *string `json:"title"`
	Date      *string `json:"date"`
	Area      *string `json:"area"`
	Tipo      *string `json:"tipo"`
	Contenido *string `json:"contenido"`
	Estado    *string `json:"estado"`
	Privado   *bool   `json:"privado"`
}

// InstanteListResponse represents paginated journal entries
type InstanteListResponse struct {
	Data    []Instante `json:"data"`
	Total   int        `json:"total"`
	Limit   int        `json:"limit"`
	Offset  int        `json:"offset"`
	HasMore bool       `json:"has_more"`
}

// AreaStat is the per-life-area entry count shown on a public blog
type AreaStat struct {
	Area  LifeArea `json:"area"`
	Count int      `json:"count"`
}

// IsValidLifeArea validates an area value against the fixed set
func IsValidLifeArea(area string) bool {
	for _, a := range LifeAreas {
		if LifeArea(area) == a {
			return true
		}
	}
	return false
}

// IsValidTipo validates the entry type
func IsValidTipo(tipo string) bool {
	switch InstanteTipo(tipo) {
	case TipoPensamiento, TipoAccion:
		return true
	default:
		return false
	}
}

// IsValidEstado validates the publication state
func IsValidEstado(estado string) bool {
	switch InstanteEstado(estado) {
	case EstadoBorrador, EstadoPublicado:
		return true
	default:
		return false
	}
}
