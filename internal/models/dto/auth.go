package dto

import (
	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/models/optional"
)

type RegisterRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	Email           string  `json:"email" validate:"required,max=150,email_address"`
	Password        string  `json:"password" validate:"required,min=6,max=72"`
	Mobile          string  `json:"mobile" validate:"required,mobile"`
	PartyRef        *int64  `json:"partyRef"`
	Role            string  `json:"role" validate:"omitempty,oneof=user admin"`
	ProfileImageRef *string `json:"profileImageRef" validate:"omitempty,max=2048"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest marks every field as present or absent. Validation runs
// only on present fields.
type UpdateUserRequest struct {
	Name            optional.Field[string] `json:"name"`
	Email           optional.Field[string] `json:"email"`
	Password        optional.Field[string] `json:"password"`
	Mobile          optional.Field[string] `json:"mobile"`
	PartyRef        optional.Field[int64]  `json:"partyRef"`
	Role            optional.Field[string] `json:"role"`
	ProfileImageRef optional.Field[string] `json:"profileImageRef"`
}

type RegisterResponse struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	User       models.User `json:"user"`
}

type LoginResponse struct {
	Message    string         `json:"message"`
	Token      string         `json:"token"`
	StatusCode int            `json:"statusCode"`
	User       models.Profile `json:"user"`
}

type UpdateUserResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
}
