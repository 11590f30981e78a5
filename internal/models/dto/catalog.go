package dto

import "github.com/hongminglow/mposter-be/internal/models"

// CreatePartyRequest takes pid as a pointer so that 0 is a valid pid and only
// an absent or null pid fails "required".
type CreatePartyRequest struct {
	PID          *int64 `json:"pid" validate:"required"`
	PartyLogoURL string `json:"partyLogoUrl" validate:"omitempty,max=2048"`
	Title        string `json:"title" validate:"max=150"`
	Description  string `json:"description" validate:"max=600"`
	PartyColor   string `json:"partyColor" validate:"max=10"`
}

type CreateBannerRequest struct {
	BannerCode  *int64 `json:"bannerCode"`
	UserID      *int64 `json:"userId"`
	Title       string `json:"title" validate:"max=150"`
	Description string `json:"description" validate:"max=400"`
}

type BannerResponse struct {
	Message string        `json:"message"`
	Banner  models.Banner `json:"banner"`
}

type PartyResponse struct {
	Message string       `json:"message"`
	Party   models.Party `json:"party"`
}
