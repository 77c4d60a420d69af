package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "job not found"},
			want: "job not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeInternal,
				Message: "failed to list jobs",
				Cause:   errors.New("connection refused"),
			},
			want: "failed to list jobs: connection refused",
		},
		{
			name: "cause repeating message",
			err: &AppError{
				Code:    ErrCodeValidation,
				Message: "app_name is required",
				Cause:   errors.New("app_name is required"),
			},
			want: "app_name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false, want true")
	}
}

func TestWrap_Nil(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "nothing"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		is   func(error) bool
	}{
		{"NotFound", NotFound("x"), ErrCodeNotFound, IsNotFound},
		{"Conflict", New(ErrCodeConflict, "x"), ErrCodeConflict, IsConflict},
		{"NotEditable", NotEditable("x"), ErrCodeNotEditable, IsNotEditable},
		{"ValidationField", ValidationField("version", "x"), ErrCodeValidation, IsValidation},
		{"ForeignKey", New(ErrCodeForeignKey, "x"), ErrCodeForeignKey, IsForeignKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("%s().Code = %v, want %v", tt.name, tt.err.Code, tt.code)
			}
			if !tt.is(tt.err) {
				t.Errorf("Is%s() = false for %v", tt.name, tt.err)
			}
			wrapped := fmt.Errorf("service: %w", tt.err)
			if !tt.is(wrapped) {
				t.Errorf("Is%s() = false through fmt.Errorf wrapping", tt.name)
			}
			if IsConflict(tt.err) != (tt.code == ErrCodeConflict) {
				t.Errorf("IsConflict mismatch for code %v", tt.code)
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(fmt.Errorf("query: %w", context.DeadlineExceeded)); got == nil || got.Code != ErrCodeTimeout {
		t.Errorf("FromContext(deadline) = %v, want timeout", got)
	}
	if got := FromContext(context.Canceled); got == nil || got.Code != ErrCodeCanceled {
		t.Errorf("FromContext(canceled) = %v, want canceled", got)
	}
	if got := FromContext(errors.New("boom")); got != nil {
		t.Errorf("FromContext(other) = %v, want nil", got)
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := fmt.Errorf("handler: %w", ValidationField("jenkins_url", "must be a valid URL"))
	if got := GetCode(err); got != ErrCodeValidation {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeValidation)
	}
	if got := GetField(err); got != "jenkins_url" {
		t.Errorf("GetField() = %v, want jenkins_url", got)
	}

	plain := errors.New("plain")
	if got := GetCode(plain); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
	if got := GetField(plain); got != "" {
		t.Errorf("GetField(plain) = %v, want empty", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeNotEditable, http.StatusConflict},
		{ErrCodeForeignKey, http.StatusConflict},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeCanceled, 499},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(tt.code); got != tt.want {
				t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
