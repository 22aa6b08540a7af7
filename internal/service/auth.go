package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/arclyte/accounts/internal/dto"
	apperrors "github.com/arclyte/accounts/internal/errors"
	"github.com/arclyte/accounts/internal/model"
	ctxutil "github.com/arclyte/accounts/pkg/context"
	"github.com/arclyte/accounts/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
)

// Conflict field names reported to callers, checked in this order.
const (
	conflictFieldUserName = "User name"
	conflictFieldEmail    = "Email address"
	conflictFieldPhone    = "Phone number"
)

// AuthService orchestrates registration, login, token refresh and
// password reset against the credential store and token service.
type AuthService struct {
	users  UserStore
	tokens *TokenService
}

func NewAuthService(users UserStore, tokens *TokenService) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// CreateUser registers a new user, or updates an existing one when the
// payload carries an id.
func (s *AuthService) CreateUser(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "CreateUser")

	if req.ID != nil && *req.ID != "" {
		return s.updateUser(ctx, *req.ID, req)
	}

	userName := strVal(req.UserName)
	email := strVal(req.Email)
	password := strVal(req.Password)
	phoneNumber := strVal(req.PhoneNumber)

	if userName == "" || email == "" || password == "" || phoneNumber == "" {
		logger.WarnWithContext(ctx, "Registration rejected, missing required fields").
			Bool("has_user_name", userName != "").
			Bool("has_email", email != "").
			Bool("has_phone_number", phoneNumber != "").
			Log()
		return nil, apperrors.ErrMissingFields
	}

	existing, err := s.users.FindConflicting(ctx, "", userName, email, phoneNumber)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil {
		field := conflictField(existing, userName, email, phoneNumber)
		logger.WarnWithContext(ctx, "Registration rejected, field already taken").
			String("field", field).
			Log()
		return nil, apperrors.NewConflictError(field)
	}

	hashed, err := HashPassword(password)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to hash password").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user := &model.User{
		UserName:     userName,
		Email:        email,
		PhoneNumber:  phoneNumber,
		Password:     hashed,
		FullName:     strVal(req.FullName),
		ProfileImage: strVal(req.ProfileImage),
		Role:         strVal(req.Role),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User registered").
		String("created_user_id", user.ID).
		String("email", user.Email).
		Log()

	return toUserResponse(user), nil
}

// updateUser applies a sparse update: only fields present in the
// payload are written, and uniqueness is re-checked against other
// users for the fields actually changing.
func (s *AuthService) updateUser(ctx context.Context, id string, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "updateUser")

	existing, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing == nil {
		return nil, apperrors.ErrUserNotFound
	}

	userName := strVal(req.UserName)
	email := strVal(req.Email)
	phoneNumber := strVal(req.PhoneNumber)

	if userName != "" || email != "" || phoneNumber != "" {
		conflicting, err := s.users.FindConflicting(ctx, id, userName, email, phoneNumber)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		if conflicting != nil {
			field := conflictField(conflicting, userName, email, phoneNumber)
			logger.WarnWithContext(ctx, "Update rejected, field already taken").
				String("target_user_id", id).
				String("field", field).
				Log()
			return nil, apperrors.NewConflictError(field)
		}
	}

	fields := make(map[string]interface{})
	if req.UserName != nil {
		fields["user_name"] = *req.UserName
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.PhoneNumber != nil {
		fields["phone_number"] = *req.PhoneNumber
	}
	if req.FullName != nil {
		fields["full_name"] = *req.FullName
	}
	if req.ProfileImage != nil {
		fields["profile_image"] = *req.ProfileImage
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := HashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		fields["password"] = hashed
	}

	if err := s.users.UpdateFields(ctx, id, fields); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	updated, err := s.users.FindByID(ctx, id)
	if err != nil || updated == nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User updated").
		String("target_user_id", id).
		Int("field_count", len(fields)).
		Log()

	return toUserResponse(updated), nil
}

// Login authenticates by identifier plus password or OTP, issues a
// fresh token pair and persists it, invalidating the previous pair.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenPairResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "Login")

	user, err := s.users.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		logger.InfoWithContext(ctx, "Login failed, user not found").Log()
		return nil, apperrors.ErrUserNotFound
	}
	ctx = ctxutil.WithUserID(ctx, user.ID)

	switch {
	case req.OTP != "":
		if user.OTP == "" || user.OTP != req.OTP {
			logger.WarnWithContext(ctx, "Login failed, OTP mismatch").Log()
			return nil, apperrors.ErrInvalidOTP
		}
	case req.Password != "":
		if !CheckPassword(user.Password, req.Password) {
			logger.WarnWithContext(ctx, "Login failed, incorrect password").Log()
			return nil, apperrors.ErrInvalidCredentials
		}
	default:
		// Identifier-only login is accepted for parity with existing
		// clients. TODO(auth): require a credential once the mobile app
		// stops calling login during OTP delivery.
		logger.WarnWithContext(ctx, "Login without credentials accepted").Log()
	}

	accessToken, refreshToken, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to issue token pair").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Persisting the pair also clears any pending OTP.
	if err := s.users.SaveTokenPair(ctx, user.ID, accessToken, refreshToken); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "User logged in").Log()

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GenerateOTP writes a fresh one-time code to the user record and
// returns it for out-of-band delivery.
func (s *AuthService) GenerateOTP(ctx context.Context, identifier string) (string, error) {
	ctx = ctxutil.WithScope(ctx, "service", "GenerateOTP")

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return "", apperrors.ErrUserNotFound
	}

	code, err := randomOTP()
	if err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"otp": code}); err != nil {
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "OTP generated").
		String("target_user_id", user.ID).
		Log()

	return code, nil
}

// RefreshTokens validates the presented pair and rotates it when the
// access token has expired. Refresh with a still-valid access token is
// an idempotent no-op. All failures surface as unauthorized.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken, accessToken string) (*dto.TokenPairResponse, error) {
	ctx = ctxutil.WithScope(ctx, "service", "RefreshTokens")

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Refresh failed, invalid refresh token").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInvalidRefreshToken, err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrUnauthorized, err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	ctx = ctxutil.WithUserID(ctx, user.ID)

	// A refresh token only stays valid while it is the stored one;
	// anything else is a rotated-out token being replayed.
	if user.RefreshToken != refreshToken {
		logger.WarnWithContext(ctx, "Refresh failed, token does not match stored pair").Log()
		return nil, apperrors.ErrStaleRefreshToken
	}

	// The expiry probe verifies the signature too: a forged access
	// token must not be able to steer the rotation decision.
	_, accessErr := s.tokens.VerifyAccess(accessToken)
	if accessErr == nil {
		logger.DebugWithContext(ctx, "Access token still valid, refresh is a no-op").Log()
		return &dto.TokenPairResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		}, nil
	}
	if !errors.Is(accessErr, jwt.ErrTokenExpired) {
		logger.WarnWithContext(ctx, "Refresh failed, invalid access token").
			Err(accessErr).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, accessErr)
	}

	newAccess, newRefresh, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to issue rotated token pair").
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrUnauthorized, err)
	}

	// Conditional update: the rotation only lands while the stored
	// refresh token is still the presented one.
	swapped, err := s.users.SaveTokenPairIf(ctx, user.ID, refreshToken, newAccess, newRefresh)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrUnauthorized, err)
	}
	if !swapped {
		return nil, apperrors.ErrStaleRefreshToken
	}

	logger.InfoWithContext(ctx, "Token pair rotated").Log()

	return &dto.TokenPairResponse{
		AccessToken:  newAccess,
		RefreshToken: newRefresh,
	}, nil
}

// ResetPassword replaces the user's password; resets to the current
// password are rejected.
func (s *AuthService) ResetPassword(ctx context.Context, identifier, newPassword string) error {
	ctx = ctxutil.WithScope(ctx, "service", "ResetPassword")

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}
	ctx = ctxutil.WithUserID(ctx, user.ID)

	if CheckPassword(user.Password, newPassword) {
		logger.WarnWithContext(ctx, "Password reset rejected, password unchanged").Log()
		return apperrors.ErrSamePassword
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.users.UpdateFields(ctx, user.ID, map[string]interface{}{"password": hashed}); err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.InfoWithContext(ctx, "Password reset").Log()

	return nil
}

// conflictField names the first colliding field in tie-break order:
// user name, then email, then phone number.
func conflictField(existing *model.User, userName, email, phoneNumber string) string {
	switch {
	case userName != "" && existing.UserName == userName:
		return conflictFieldUserName
	case email != "" && existing.Email == email:
		return conflictFieldEmail
	default:
		return conflictFieldPhone
	}
}

// randomOTP returns a uniformly random six digit code.
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
