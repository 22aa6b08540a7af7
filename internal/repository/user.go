package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arclyte/accounts/internal/model"
	ctxutil "github.com/arclyte/accounts/pkg/context"
	"github.com/arclyte/accounts/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns the user with the given id, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	ctx = ctxutil.WithScope(ctx, "repository", "FindByID")

	start := time.Now()
	var user model.User

	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			String("lookup_id", id).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	return &user, nil
}

// FindByIdentifier matches the identifier against email, user name or
// phone number; returns nil when no user matches.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	ctx = ctxutil.WithScope(ctx, "repository", "FindByIdentifier")

	start := time.Now()
	var user model.User

	err := r.db.WithContext(ctx).
		Where("email = ? OR user_name = ? OR phone_number = ?", identifier, identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.ErrorWithContext(ctx, "Failed to get user by identifier").
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "User retrieved by identifier").
		String("lookup_id", user.ID).
		Duration(time.Since(start)).
		Log()

	return &user, nil
}

// FindConflicting returns any other user holding one of the given
// unique fields. Empty arguments are skipped; excludeID removes the
// caller's own row from the check.
func (r *UserRepository) FindConflicting(ctx context.Context, excludeID, userName, email, phoneNumber string) (*model.User, error) {
	ctx = ctxutil.WithScope(ctx, "repository", "FindConflicting")

	var conds []string
	var args []interface{}
	if userName != "" {
		conds = append(conds, "user_name = ?")
		args = append(args, userName)
	}
	if email != "" {
		conds = append(conds, "email = ?")
		args = append(args, email)
	}
	if phoneNumber != "" {
		conds = append(conds, "phone_number = ?")
		args = append(args, phoneNumber)
	}
	if len(conds) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Where(strings.Join(conds, " OR "), args...)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var user model.User
	err := query.First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.ErrorWithContext(ctx, "Failed to check for conflicting users").
			Err(err).
			Log()
		return nil, err
	}

	return &user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithScope(ctx, "repository", "Create")

	start := time.Now()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "User created").
		String("created_user_id", user.ID).
		String("email", user.Email).
		Duration(time.Since(start)).
		Log()

	return nil
}

// UpdateFields applies a partial update; only the columns present in
// fields are written.
func (r *UserRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	ctx = ctxutil.WithScope(ctx, "repository", "UpdateFields")

	if len(fields) == 0 {
		return nil
	}

	start := time.Now()
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user").
			String("target_user_id", id).
			Duration(time.Since(start)).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.DebugWithContext(ctx, "User updated").
		String("target_user_id", id).
		Int("field_count", len(fields)).
		Duration(time.Since(start)).
		Log()

	return nil
}

// SaveTokenPair overwrites the stored token pair and clears any pending
// OTP; the previously stored refresh token stops validating.
func (r *UserRepository) SaveTokenPair(ctx context.Context, id, accessToken, refreshToken string) error {
	ctx = ctxutil.WithScope(ctx, "repository", "SaveTokenPair")

	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"otp":           "",
	})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to store token pair").
			String("target_user_id", id).
			Err(result.Error).
			Log()
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// SaveTokenPairIf replaces the stored pair only while the stored
// refresh token still equals expectedRefresh. Returns false when
// another rotation won the race.
func (r *UserRepository) SaveTokenPairIf(ctx context.Context, id, expectedRefresh, accessToken, refreshToken string) (bool, error) {
	ctx = ctxutil.WithScope(ctx, "repository", "SaveTokenPairIf")

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND refresh_token = ?", id, expectedRefresh).
		Updates(map[string]interface{}{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to rotate token pair").
			String("target_user_id", id).
			Err(result.Error).
			Log()
		return false, result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "Token rotation lost to a concurrent update").
			String("target_user_id", id).
			Log()
		return false, nil
	}

	return true, nil
}

// Search returns a page of users matching the search term against full
// name, user name, email or phone number, newest first.
func (r *UserRepository) Search(ctx context.Context, limit, offset int, search string) ([]model.User, int64, error) {
	ctx = ctxutil.WithScope(ctx, "repository", "Search")

	start := time.Now()
	var users []model.User
	var total int64

	query := r.db.WithContext(ctx).Model(&model.User{})

	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"full_name ILIKE ? OR user_name ILIKE ? OR email ILIKE ? OR phone_number ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count users").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch users").
			Int("limit", limit).
			Int("offset", offset).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Users retrieved").
		Int("limit", limit).
		Int("offset", offset).
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, total, nil
}
