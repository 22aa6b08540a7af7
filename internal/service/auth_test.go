package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arclyte/accounts/internal/dto"
	apperrors "github.com/arclyte/accounts/internal/errors"
	"github.com/arclyte/accounts/internal/model"
	"github.com/arclyte/accounts/pkg/logger"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.SetLogger(zap.NewNop())
	m.Run()
}

// memStore is an in-memory UserStore for exercising the auth core
// without a database.
type memStore struct {
	users  map[string]*model.User
	nextID int
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]*model.User)}
}

func (s *memStore) FindByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (s *memStore) FindByIdentifier(_ context.Context, identifier string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == identifier || u.UserName == identifier || u.PhoneNumber == identifier {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) FindConflicting(_ context.Context, excludeID, userName, email, phoneNumber string) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == excludeID {
			continue
		}
		if (userName != "" && u.UserName == userName) ||
			(email != "" && u.Email == email) ||
			(phoneNumber != "" && u.PhoneNumber == phoneNumber) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, user *model.User) error {
	if user.ID == "" {
		s.nextID++
		user.ID = fmt.Sprintf("user-%d", s.nextID)
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memStore) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("record not found")
	}
	for column, value := range fields {
		v, _ := value.(string)
		switch column {
		case "user_name":
			u.UserName = v
		case "email":
			u.Email = v
		case "phone_number":
			u.PhoneNumber = v
		case "full_name":
			u.FullName = v
		case "profile_image":
			u.ProfileImage = v
		case "role":
			u.Role = v
		case "password":
			u.Password = v
		case "otp":
			u.OTP = v
		default:
			return fmt.Errorf("unexpected column %q", column)
		}
	}
	return nil
}

func (s *memStore) SaveTokenPair(_ context.Context, id, accessToken, refreshToken string) error {
	u, ok := s.users[id]
	if !ok {
		return errors.New("record not found")
	}
	u.AccessToken = accessToken
	u.RefreshToken = refreshToken
	u.OTP = ""
	return nil
}

func (s *memStore) SaveTokenPairIf(_ context.Context, id, expectedRefresh, accessToken, refreshToken string) (bool, error) {
	u, ok := s.users[id]
	if !ok || u.RefreshToken != expectedRefresh {
		return false, nil
	}
	u.AccessToken = accessToken
	u.RefreshToken = refreshToken
	return true, nil
}

func strPtr(s string) *string { return &s }

func validRegisterRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		UserName:    strPtr("johndoe1"),
		Email:       strPtr("john@example.com"),
		Password:    strPtr("Sup3rSecret!"),
		PhoneNumber: strPtr("+15551234567"),
		FullName:    strPtr("John Doe"),
	}
}

func newTestAuthService() (*AuthService, *memStore) {
	store := newMemStore()
	return NewAuthService(store, newTestTokenService()), store
}

func registerTestUser(t *testing.T, svc *AuthService) *dto.UserResponse {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	return user
}

func TestCreateUserMissingFields(t *testing.T) {
	svc, _ := newTestAuthService()

	tests := []struct {
		name   string
		mutate func(*dto.RegisterRequest)
	}{
		{"no user name", func(r *dto.RegisterRequest) { r.UserName = nil }},
		{"empty user name", func(r *dto.RegisterRequest) { r.UserName = strPtr("") }},
		{"no email", func(r *dto.RegisterRequest) { r.Email = nil }},
		{"no password", func(r *dto.RegisterRequest) { r.Password = nil }},
		{"no phone number", func(r *dto.RegisterRequest) { r.PhoneNumber = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(req)
			_, err := svc.CreateUser(context.Background(), req)
			if !errors.Is(err, apperrors.ErrMissingFields) {
				t.Errorf("expected ErrMissingFields, got %v", err)
			}
		})
	}
}

func TestCreateUserSuccess(t *testing.T) {
	svc, store := newTestAuthService()

	user := registerTestUser(t, svc)
	if user.ID == "" {
		t.Fatal("created user has no id")
	}
	if user.Email != "john@example.com" {
		t.Errorf("Email = %q, want %q", user.Email, "john@example.com")
	}

	stored := store.users[user.ID]
	if stored.Password == "Sup3rSecret!" {
		t.Error("password stored in plaintext")
	}
	if !CheckPassword(stored.Password, "Sup3rSecret!") {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestCreateUserConflicts(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	tests := []struct {
		name      string
		mutate    func(*dto.RegisterRequest)
		wantField string
	}{
		{"duplicate user name", func(r *dto.RegisterRequest) {
			r.Email = strPtr("other@example.com")
			r.PhoneNumber = strPtr("+15550000001")
		}, "User name"},
		{"duplicate email", func(r *dto.RegisterRequest) {
			r.UserName = strPtr("otheruser")
			r.PhoneNumber = strPtr("+15550000001")
		}, "Email address"},
		{"duplicate phone number", func(r *dto.RegisterRequest) {
			r.UserName = strPtr("otheruser")
			r.Email = strPtr("other@example.com")
		}, "Phone number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegisterRequest()
			tt.mutate(req)
			_, err := svc.CreateUser(context.Background(), req)
			if err == nil {
				t.Fatal("expected a conflict error")
			}
			domainErr := apperrors.GetDomainError(err)
			if domainErr == nil || domainErr.Code != apperrors.CodeConflict {
				t.Fatalf("expected a CONFLICT error, got %v", err)
			}
			want := tt.wantField + " already exists."
			if domainErr.Message != want {
				t.Errorf("message = %q, want %q", domainErr.Message, want)
			}
		})
	}
}

func TestCreateUserUpdatesExisting(t *testing.T) {
	svc, store := newTestAuthService()
	created := registerTestUser(t, svc)

	oldHash := store.users[created.ID].Password

	updated, err := svc.CreateUser(context.Background(), &dto.RegisterRequest{
		ID:       strPtr(created.ID),
		FullName: strPtr("John Q. Doe"),
	})
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}

	if updated.FullName != "John Q. Doe" {
		t.Errorf("FullName = %q, want %q", updated.FullName, "John Q. Doe")
	}
	if updated.Email != "john@example.com" {
		t.Errorf("untouched Email changed to %q", updated.Email)
	}
	if store.users[created.ID].Password != oldHash {
		t.Error("password changed on an update that did not include one")
	}
}

func TestUpdateUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.CreateUser(context.Background(), &dto.RegisterRequest{
		ID:       strPtr("missing"),
		FullName: strPtr("Nobody"),
	})
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateConflictChecksOnlySuppliedFields(t *testing.T) {
	svc, _ := newTestAuthService()
	first := registerTestUser(t, svc)

	_, err := svc.CreateUser(context.Background(), &dto.RegisterRequest{
		UserName:    strPtr("janedoe1"),
		Email:       strPtr("jane@example.com"),
		Password:    strPtr("An0therSecret!"),
		PhoneNumber: strPtr("+15559876543"),
	})
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}

	// Taking the other user's email must fail; an update without unique
	// fields must not.
	_, err = svc.CreateUser(context.Background(), &dto.RegisterRequest{
		ID:    strPtr(first.ID),
		Email: strPtr("jane@example.com"),
	})
	domainErr := apperrors.GetDomainError(err)
	if domainErr == nil || domainErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected a CONFLICT error, got %v", err)
	}

	if _, err := svc.CreateUser(context.Background(), &dto.RegisterRequest{
		ID:       strPtr(first.ID),
		FullName: strPtr("Still John"),
	}); err != nil {
		t.Errorf("non-unique update returned error: %v", err)
	}
}

func TestLoginWithPassword(t *testing.T) {
	svc, store := newTestAuthService()
	created := registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("login returned an empty token pair")
	}

	stored := store.users[created.ID]
	if stored.AccessToken != pair.AccessToken || stored.RefreshToken != pair.RefreshToken {
		t.Error("issued pair was not persisted on the user record")
	}

	claims, err := newTestTokenService().VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess returned error: %v", err)
	}
	if claims.UserID != created.ID {
		t.Errorf("access token carries user id %q, want %q", claims.UserID, created.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "WrongSecret1!",
	})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "ghost@example.com",
		Password:   "whatever",
	})
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLoginByUserNameAndPhone(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	for _, identifier := range []string{"johndoe1", "+15551234567"} {
		if _, err := svc.Login(context.Background(), &dto.LoginRequest{
			Identifier: identifier,
			Password:   "Sup3rSecret!",
		}); err != nil {
			t.Errorf("login by %q returned error: %v", identifier, err)
		}
	}
}

func TestOTPFlow(t *testing.T) {
	svc, store := newTestAuthService()
	created := registerTestUser(t, svc)

	code, err := svc.GenerateOTP(context.Background(), "john@example.com")
	if err != nil {
		t.Fatalf("GenerateOTP returned error: %v", err)
	}
	if len(code) != 6 || strings.Trim(code, "0123456789") != "" {
		t.Fatalf("OTP %q is not a six digit code", code)
	}
	if store.users[created.ID].OTP != code {
		t.Fatal("generated OTP was not stored")
	}

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		OTP:        wrong,
	}); !errors.Is(err, apperrors.ErrInvalidOTP) {
		t.Errorf("expected ErrInvalidOTP for a wrong code, got %v", err)
	}

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		OTP:        code,
	}); err != nil {
		t.Fatalf("OTP login returned error: %v", err)
	}

	if store.users[created.ID].OTP != "" {
		t.Error("OTP was not cleared after successful use")
	}

	// The cleared code must not work a second time.
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		OTP:        code,
	}); !errors.Is(err, apperrors.ErrInvalidOTP) {
		t.Errorf("expected ErrInvalidOTP after the code was consumed, got %v", err)
	}
}

func TestGenerateOTPUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.GenerateOTP(context.Background(), "ghost@example.com")
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRefreshIsNoOpWhileAccessValid(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	refreshed, err := svc.RefreshTokens(context.Background(), pair.RefreshToken, pair.AccessToken)
	if err != nil {
		t.Fatalf("RefreshTokens returned error: %v", err)
	}
	if refreshed.AccessToken != pair.AccessToken || refreshed.RefreshToken != pair.RefreshToken {
		t.Error("refresh with a valid access token should return the same pair")
	}
}

func TestRefreshRotatesExpiredAccess(t *testing.T) {
	store := newMemStore()
	// Access tokens come out already expired; refresh tokens stay valid.
	tokens := NewTokenService("access-secret", "refresh-secret", -time.Minute, time.Hour)
	svc := NewAuthService(store, tokens)

	if _, err := svc.CreateUser(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	pair, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	rotated, err := svc.RefreshTokens(context.Background(), pair.RefreshToken, pair.AccessToken)
	if err != nil {
		t.Fatalf("RefreshTokens returned error: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Error("refresh token was not rotated")
	}

	// The superseded refresh token must be dead.
	if _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken, pair.AccessToken); !errors.Is(err, apperrors.ErrStaleRefreshToken) {
		t.Errorf("expected ErrStaleRefreshToken for the old pair, got %v", err)
	}
}

func TestRefreshRejectsForeignAccessToken(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// Signed under a different secret: must fail, not trigger rotation.
	forged, err := NewTokenService("attacker-secret", "x", -time.Minute, time.Hour).IssueAccess("user-1", "")
	if err != nil {
		t.Fatalf("IssueAccess returned error: %v", err)
	}

	_, err = svc.RefreshTokens(context.Background(), pair.RefreshToken, forged)
	if !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshInvalidRefreshToken(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.RefreshTokens(context.Background(), "garbage", "garbage")
	if !errors.Is(err, apperrors.ErrInvalidRefreshToken) {
		t.Errorf("expected ErrInvalidRefreshToken, got %v", err)
	}
}

func TestRefreshStaleAfterNewLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	first, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Sup3rSecret!",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if _, err = svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Sup3rSecret!",
	}); err != nil {
		t.Fatalf("second login returned error: %v", err)
	}

	_, err = svc.RefreshTokens(context.Background(), first.RefreshToken, first.AccessToken)
	if !errors.Is(err, apperrors.ErrStaleRefreshToken) {
		t.Errorf("expected ErrStaleRefreshToken after a newer login, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	registerTestUser(t, svc)

	if err := svc.ResetPassword(context.Background(), "john@example.com", "Sup3rSecret!"); !errors.Is(err, apperrors.ErrSamePassword) {
		t.Errorf("expected ErrSamePassword, got %v", err)
	}

	if err := svc.ResetPassword(context.Background(), "john@example.com", "Fresh3rSecret!"); err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Fresh3rSecret!",
	}); err != nil {
		t.Errorf("login with the new password failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Identifier: "john@example.com",
		Password:   "Sup3rSecret!",
	}); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("old password still accepted after reset: %v", err)
	}
}

func TestResetPasswordUnknownUser(t *testing.T) {
	svc, _ := newTestAuthService()

	err := svc.ResetPassword(context.Background(), "ghost@example.com", "Fresh3rSecret!")
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
