package xerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: "fallback"},
		{name: "plain error", err: errors.New("boom"), want: "fallback"},
		{name: "server message", err: &APIError{Status: 403, Message: "Forbidden"}, want: "Forbidden"},
		{name: "wrapped server message", err: fmt.Errorf("block user: %w", &APIError{Status: 409, Message: "Already blocked"}), want: "Already blocked"},
		{name: "empty server message", err: &APIError{Status: 500}, want: "fallback"},
		{name: "network", err: NewNetworkError(errors.New("dial tcp: refused")), want: NetworkMessage},
		{name: "malformed", err: NewMalformedError(http.StatusOK, errors.New("missing user")), want: "fallback"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := UserMessage(tc.err, "fallback"); got != tc.want {
				t.Fatalf("UserMessage() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAPIErrorUnwrapsToSentinels(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadRequest, ErrInvalidInput},
	}

	for _, tc := range cases {
		err := fmt.Errorf("ctx: %w", &APIError{Status: tc.status, Message: "x"})
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected errors.Is(%v)", tc.status, tc.want)
		}
	}

	if errors.Is(&APIError{Status: 500}, ErrUnauthorized) {
		t.Fatalf("500 must not match ErrUnauthorized")
	}
}

func TestNetworkErrorHasNoStatus(t *testing.T) {
	err := NewNetworkError(errors.New("timeout"))
	if err.Status != 0 {
		t.Fatalf("expected zero status, got %d", err.Status)
	}
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork in chain")
	}
}

func TestMalformedErrorKeepsCause(t *testing.T) {
	err := NewMalformedError(http.StatusOK, errors.New("missing user"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed in chain")
	}
	if err.Message != "" {
		t.Fatalf("expected no user message, got %q", err.Message)
	}
	if got := err.Error(); got != "api 200 MALFORMED_RESPONSE: malformed response from server: missing user" {
		t.Fatalf("Error() = %q", got)
	}
}
