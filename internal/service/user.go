package service

import (
	"context"

	"github.com/arclyte/accounts/internal/dto"
	apperrors "github.com/arclyte/accounts/internal/errors"
	"github.com/arclyte/accounts/internal/model"
	ctxutil "github.com/arclyte/accounts/pkg/context"
	"github.com/arclyte/accounts/pkg/logger"
)

// UserDirectory is the read side of the user store used by listing and
// detail lookups.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	Search(ctx context.Context, limit, offset int, search string) ([]model.User, int64, error)
}

// UserService serves user listing and detail queries.
type UserService struct {
	users UserDirectory
}

func NewUserService(users UserDirectory) *UserService {
	return &UserService{users: users}
}

// Search returns a page of users matching the term, newest first,
// together with the total match count.
func (s *UserService) Search(ctx context.Context, limit, offset int, search string) ([]dto.UserResponse, int64, error) {
	ctx = ctxutil.WithScope(ctx, "service", "Search")

	users, total, err := s.users.Search(ctx, limit, offset, search)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *toUserResponse(&users[i]))
	}

	logger.DebugWithContext(ctx, "User search served").
		Int("returned_count", len(responses)).
		Int64("total", total).
		Log()

	return responses, total, nil
}

// GetByID returns a single user's public profile.
func (s *UserService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "GetByID")

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	return toUserResponse(user), nil
}

// toUserResponse strips credentials and tokens from the stored record.
func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:           u.ID,
		UserName:     u.UserName,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		FullName:     u.FullName,
		ProfileImage: u.ProfileImage,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
