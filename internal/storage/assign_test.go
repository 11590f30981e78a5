package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/mposter-be/internal/models"
	"github.com/hongminglow/mposter-be/internal/models/optional"
)

func TestUserAssignmentsOnlyListsPresentFields(t *testing.T) {
	mobile := "9999999999"
	got := UserAssignments(models.UserPatch{
		Mobile:          &mobile,
		PartyRef:        optional.Null[int64](),
		ProfileImageRef: optional.Of("https://cdn.example.com/a.png"),
	})

	assert.Equal(t, []Assignment{
		{Column: "mobile", Value: "9999999999"},
		{Column: "party_ref", Value: nil},
		{Column: "profile_image_ref", Value: "https://cdn.example.com/a.png"},
	}, got)
}

func TestUserAssignmentsEmptyPatch(t *testing.T) {
	assert.Empty(t, UserAssignments(models.UserPatch{}))
}

func TestPartyAssignmentsIgnoresNullPID(t *testing.T) {
	got := PartyAssignments(models.PartyPatch{
		PID:   optional.Null[int64](),
		Title: optional.Null[string](),
	})
	assert.Equal(t, []Assignment{{Column: "title", Value: ""}}, got)
}

func TestBannerAssignments(t *testing.T) {
	got := BannerAssignments(models.BannerPatch{
		UserID: optional.Of(int64(4)),
		Title:  optional.Of("Rally"),
	})
	assert.Equal(t, []Assignment{
		{Column: "user_id", Value: int64(4)},
		{Column: "title", Value: "Rally"},
	}, got)
}
