package models

import (
	"time"

	"github.com/hongminglow/mposter-be/internal/models/optional"
)

// Party is an entry of the political party reference list.
type Party struct {
	ID           string    `json:"id" db:"id"`
	PID          int64     `json:"pid" db:"pid"`
	PartyLogoURL string    `json:"partyLogoUrl" db:"party_logo_url"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	PartyColor   string    `json:"partyColor" db:"party_color"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PartyPatch is a partial update of a Party.
type PartyPatch struct {
	PID          optional.Field[int64]  `json:"pid"`
	PartyLogoURL optional.Field[string] `json:"partyLogoUrl"`
	Title        optional.Field[string] `json:"title"`
	Description  optional.Field[string] `json:"description"`
	PartyColor   optional.Field[string] `json:"partyColor"`
}

// Apply merges the patch into p. Null clears text fields.
func (pp PartyPatch) Apply(p *Party) {
	if pp.PID.Set && !pp.PID.Null {
		p.PID = pp.PID.Value
	}
	applyText(&p.PartyLogoURL, pp.PartyLogoURL)
	applyText(&p.Title, pp.Title)
	applyText(&p.Description, pp.Description)
	applyText(&p.PartyColor, pp.PartyColor)
}

func applyText(dst *string, f optional.Field[string]) {
	if f.Set {
		*dst = f.Value
	}
}
