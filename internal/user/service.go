// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"

	"github.com/carterperez-dev/templates/blog-api/internal/auth"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	u auth.NewUser,
) (*auth.UserInfo, error) {
	if err := s.ensureAvailable(ctx, u.Email, u.Username); err != nil {
		return nil, err
	}

	user := &User{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, conflictError(err)
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	userID int64,
	req UpdateProfileRequest,
) (*User, error) {
	user, err := s.repo.Update(ctx, userID, req.assignments())
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, conflictError(err)
	}
	return user, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	filter ListFilter,
	page core.Pagination,
) (core.Page[User], error) {
	return s.repo.List(ctx, filter, page)
}

// DeleteUser refuses self-deletion before looking the target up, so the
// answer does not depend on whether the account exists.
func (s *Service) DeleteUser(ctx context.Context, requesterID, targetID int64) error {
	if err := core.Authorize(requesterID, targetID, core.ActionDeleteUser); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, targetID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.NotFoundError("user")
		}
		return err
	}

	return nil
}

// ensureAvailable reports a taken email or username before the insert.
// The unique constraints still decide races and rows of deactivated users.
func (s *Service) ensureAvailable(ctx context.Context, email, username string) error {
	taken := func(err error) (bool, error) {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if found, err := taken(err); err != nil || found {
		if found {
			return core.ConflictError("email already exists")
		}
		return err
	}

	_, err = s.repo.GetByUsername(ctx, username)
	if found, err := taken(err); err != nil || found {
		if found {
			return core.ConflictError("username already taken")
		}
		return err
	}

	return nil
}

// conflictError turns a unique violation into the message for the
// constraint that fired. Other errors pass through.
func conflictError(err error) error {
	if !errors.Is(err, core.ErrDuplicateKey) {
		return err
	}

	switch core.ConstraintName(err) {
	case constraintEmail:
		return core.ConflictError("email already exists")
	case constraintUsername:
		return core.ConflictError("username already taken")
	}
	return core.ConflictError("user already exists")
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		AvatarURL:    u.AvatarURL,
		IsActive:     u.IsActive,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// AuthorExists reports whether id belongs to an active user.
func (s *Service) AuthorExists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var _ auth.UserProvider = (*Service)(nil)
