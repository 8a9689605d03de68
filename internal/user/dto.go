// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

// UpdateProfileRequest is a partial update: a nil field is left unchanged.
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"  validate:"omitempty,min=3,max=50,username"`
	Email     *string `json:"email,omitempty"     validate:"omitempty,email,max=255"`
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName  *string `json:"lastName,omitempty"  validate:"omitempty,max=50"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url,max=500"`
}

func (r UpdateProfileRequest) assignments() *core.Assignments {
	a := core.NewAssignments(updatableFields)
	if r.Username != nil {
		a.Set("username", *r.Username)
	}
	if r.Email != nil {
		a.Set("email", strings.ToLower(*r.Email))
	}
	if r.FirstName != nil {
		a.Set("firstName", *r.FirstName)
	}
	if r.LastName != nil {
		a.Set("lastName", *r.LastName)
	}
	if r.AvatarURL != nil {
		a.Set("avatarUrl", *r.AvatarURL)
	}
	return a
}

type ListFilter struct {
	Search string
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	AvatarURL *string   `json:"avatarUrl"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponseValue(u User) UserResponse {
	return ToUserResponse(&u)
}
