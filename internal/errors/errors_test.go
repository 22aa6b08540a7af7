package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"missing fields", ErrMissingFields, http.StatusBadRequest},
		{"same password", ErrSamePassword, http.StatusBadRequest},
		{"user not found", ErrUserNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("Email address"), http.StatusConflict},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"invalid otp", ErrInvalidOTP, http.StatusUnauthorized},
		{"invalid token", ErrInvalidToken, http.StatusUnauthorized},
		{"invalid refresh token", ErrInvalidRefreshToken, http.StatusUnauthorized},
		{"stale refresh token", ErrStaleRefreshToken, http.StatusUnauthorized},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped domain error", WrapError(ErrUserNotFound, errors.New("sql: no rows")), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("ToHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWrappedErrorsMatchPredefined(t *testing.T) {
	wrapped := WrapError(ErrInvalidRefreshToken, errors.New("signature is invalid"))

	if !errors.Is(wrapped, ErrInvalidRefreshToken) {
		t.Error("wrapped error does not match its predefined value")
	}
	if errors.Is(wrapped, ErrInvalidToken) {
		t.Error("wrapped error matches a different code")
	}
}

func TestConflictErrorMessage(t *testing.T) {
	err := NewConflictError("Phone number")

	if err.Message != "Phone number already exists." {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Field != "Phone number" {
		t.Errorf("Field = %q", err.Field)
	}
	if err.Code != CodeConflict {
		t.Errorf("Code = %q", err.Code)
	}
}

func TestGetErrorMessage(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrUserNotFound)
	if got := GetErrorMessage(wrapped); got != "User not found." {
		t.Errorf("GetErrorMessage() = %q", got)
	}
	if got := GetErrorMessage(errors.New("boom")); got != "boom" {
		t.Errorf("GetErrorMessage() = %q", got)
	}
}
