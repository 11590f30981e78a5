package storage

import (
	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/models/optional"
)

// Assignment is one column written by a partial update. A nil Value writes NULL.
type Assignment struct {
	Column string
	Value  any
}

// UserAssignments lists the columns a user patch writes, in a stable order.
func UserAssignments(p models.UserPatch) []Assignment {
	var out []Assignment
	out = appendString(out, "name", p.Name)
	out = appendString(out, "email", p.Email)
	out = appendString(out, "mobile", p.Mobile)
	out = appendString(out, "role", p.Role)
	out = appendString(out, "password_hash", p.PasswordHash)
	out = appendField(out, "party_ref", p.PartyRef)
	out = appendField(out, "profile_image_ref", p.ProfileImageRef)
	return out
}

// PartyAssignments lists the columns a party patch writes. Null text fields
// are stored as empty strings; a null pid is ignored.
func PartyAssignments(p models.PartyPatch) []Assignment {
	var out []Assignment
	if p.PID.Set && !p.PID.Null {
		out = append(out, Assignment{Column: "pid", Value: p.PID.Value})
	}
	out = appendText(out, "party_logo_url", p.PartyLogoURL)
	out = appendText(out, "title", p.Title)
	out = appendText(out, "description", p.Description)
	out = appendText(out, "party_color", p.PartyColor)
	return out
}

// BannerAssignments lists the columns a banner patch writes.
func BannerAssignments(p models.BannerPatch) []Assignment {
	var out []Assignment
	out = appendField(out, "banner_code", p.BannerCode)
	out = appendField(out, "user_id", p.UserID)
	out = appendText(out, "title", p.Title)
	out = appendText(out, "description", p.Description)
	return out
}

// Nullable turns a typed nil pointer into an untyped nil for SQL drivers.
func Nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}

func appendString(out []Assignment, column string, v *string) []Assignment {
	if v == nil {
		return out
	}
	return append(out, Assignment{Column: column, Value: *v})
}

func appendField[T any](out []Assignment, column string, f optional.Field[T]) []Assignment {
	if !f.Set {
		return out
	}
	return append(out, Assignment{Column: column, Value: Nullable(f.Ptr())})
}

func appendText(out []Assignment, column string, f optional.Field[string]) []Assignment {
	if !f.Set {
		return out
	}
	return append(out, Assignment{Column: column, Value: f.Value})
}
