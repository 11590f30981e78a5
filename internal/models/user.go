package models

import (
	"time"

	"github.com/hongminglow/mposter-be/internal/models/optional"
)

// User is the persisted account record. PasswordHash never leaves the server.
type User struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Email           string    `json:"email" db:"email"`
	Mobile          string    `json:"mobile" db:"mobile"`
	PartyRef        *int64    `json:"partyRef" db:"party_ref"`
	Role            string    `json:"role" db:"role"`
	ProfileImageRef *string   `json:"profileImageRef" db:"profile_image_ref"`
	PasswordHash    string    `json:"-" db:"password_hash"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile is the client-facing projection of a User.
type Profile struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Mobile          string  `json:"mobile"`
	Role            string  `json:"role"`
	PartyRef        *int64  `json:"partyRef"`
	ProfileImageRef *string `json:"profileImageRef"`
}

// Profile projects the user without timestamps or credentials.
func (u User) Profile() Profile {
	return Profile{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Mobile:          u.Mobile,
		Role:            u.Role,
		PartyRef:        u.PartyRef,
		ProfileImageRef: u.ProfileImageRef,
	}
}

// UserPatch lists the columns an update touches. Nil pointers and unset
// fields are left as stored.
type UserPatch struct {
	Name            *string
	Email           *string
	Mobile          *string
	Role            *string
	PasswordHash    *string
	PartyRef        optional.Field[int64]
	ProfileImageRef optional.Field[string]
}

// Apply merges the patch into u in memory. Stores use it to keep their
// returned record consistent with what they wrote.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Mobile != nil {
		u.Mobile = *p.Mobile
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.PartyRef.Set {
		u.PartyRef = p.PartyRef.Ptr()
	}
	if p.ProfileImageRef.Set {
		u.ProfileImageRef = p.ProfileImageRef.Ptr()
	}
}
