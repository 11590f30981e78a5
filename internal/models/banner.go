package models

import (
	"time"

	"github.com/hongminglow/mposter-be/internal/models/optional"
)

// Banner is a poster banner owned by a user.
type Banner struct {
	ID          string    `json:"id" db:"id"`
	BannerCode  *int64    `json:"bannerCode" db:"banner_code"`
	UserID      *int64    `json:"userId" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// BannerPatch is a partial update of a Banner.
type BannerPatch struct {
	BannerCode  optional.Field[int64]  `json:"bannerCode"`
	UserID      optional.Field[int64]  `json:"userId"`
	Title       optional.Field[string] `json:"title"`
	Description optional.Field[string] `json:"description"`
}

// Apply merges the patch into b.
func (bp BannerPatch) Apply(b *Banner) {
	if bp.BannerCode.Set {
		b.BannerCode = bp.BannerCode.Ptr()
	}
	if bp.UserID.Set {
		b.UserID = bp.UserID.Ptr()
	}
	applyText(&b.Title, bp.Title)
	applyText(&b.Description, bp.Description)
}
