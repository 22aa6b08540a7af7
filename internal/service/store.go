package service

import (
	"context"

	"github.com/arclyte/accounts/internal/model"
)

// UserStore is the credential store contract the authentication core
// depends on. Find methods return nil (not an error) when no user
// matches. Implemented by repository.UserRepository.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	FindConflicting(ctx context.Context, excludeID, userName, email, phoneNumber string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	SaveTokenPair(ctx context.Context, id, accessToken, refreshToken string) error
	SaveTokenPairIf(ctx context.Context, id, expectedRefresh, accessToken, refreshToken string) (bool, error)
}

// DocumentStore persists upload metadata rows.
type DocumentStore interface {
	CreateBatch(ctx context.Context, docs []model.Document) error
	ListByUser(ctx context.Context, userID string) ([]model.Document, error)
}
