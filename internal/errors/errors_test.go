package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *DomainError
		want string
	}{
		{
			name: "with wrapped error",
			err:  New("youtube", "Fetch", ErrUnavailable, errors.New("status 503")),
			want: "youtube.Fetch: unavailable: status 503",
		},
		{
			name: "kind only",
			err:  New("oauth", "ValidateToken", ErrUnauthorized, nil),
			want: "oauth.ValidateToken: unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	t.Parallel()

	inner := errors.New("video gone")
	err := New("youtube", "Fetch", ErrNotFound, inner)

	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) = false, want true")
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is(err, inner) = false, want true")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("errors.Is(err, ErrUnauthorized) = true, want false")
	}

	wrapped := fmt.Errorf("invoke: %w", err)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("errors.Is through fmt wrapping = false, want true")
	}
	if errors.Unwrap(err) != inner {
		t.Error("Unwrap() did not return the inner error")
	}
}

func TestDomainError_WithContext(t *testing.T) {
	t.Parallel()

	err := &DomainError{Domain: "mcp", Op: "Invoke", Kind: ErrBadRequest}
	err.WithCode(CodeInvalidInput).
		WithReason("schema").
		WithContext(ContextViolations, []string{"url: is required"})

	if got := Code(err); got != CodeInvalidInput {
		t.Errorf("Code() = %q, want %q", got, CodeInvalidInput)
	}
	if got := Reason(err); got != "schema" {
		t.Errorf("Reason() = %q, want %q", got, "schema")
	}
	if got := Violations(err); len(got) != 1 || got[0] != "url: is required" {
		t.Errorf("Violations() = %v", got)
	}
}

func TestHTTPStatusAndCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"nil", nil, 200, CodeInternalError},
		{"bad request", New("d", "op", ErrBadRequest, nil), 400, CodeInvalidRequest},
		{"bad request with code", New("d", "op", ErrBadRequest, nil).WithCode(CodeInvalidURL), 400, CodeInvalidURL},
		{"unauthorized", New("d", "op", ErrUnauthorized, nil), 401, CodeInvalidToken},
		{"forbidden", New("d", "op", ErrForbidden, nil), 403, CodeInsufficientScope},
		{"not found", New("d", "op", ErrNotFound, nil).WithCode(CodeToolNotFound), 404, CodeToolNotFound},
		{"unavailable", New("d", "op", ErrUnavailable, nil), 503, CodeServiceUnavailable},
		{"internal", New("d", "op", ErrInternal, nil), 500, CodeInternalError},
		{"plain error", errors.New("boom"), 500, CodeInternalError},
		{"wrapped domain", fmt.Errorf("ctx: %w", New("d", "op", ErrNotFound, nil).WithCode(CodeVideoNotFound)), 404, CodeVideoNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatus(tt.err); got != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.wantStatus)
			}
			if tt.err == nil {
				return
			}
			if got := Code(tt.err); got != tt.wantCode {
				t.Errorf("Code() = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	t.Run("custom message is used", func(t *testing.T) {
		t.Parallel()
		err := New("youtube", "Parse", ErrBadRequest, nil).WithCode(CodeInvalidURL).WithMessage("unsupported host")
		if got := Message(err); got != "unsupported host" {
			t.Errorf("Message() = %q, want %q", got, "unsupported host")
		}
	})

	t.Run("internal errors never leak", func(t *testing.T) {
		t.Parallel()
		err := New("mcp", "Invoke", ErrInternal, errors.New("nil pointer in handler")).WithMessage("nil pointer")
		got := Message(err)
		if strings.Contains(got, "nil pointer") {
			t.Errorf("Message() = %q leaks internal detail", got)
		}
		if got != defaultMessages[CodeInternalError] {
			t.Errorf("Message() = %q, want default internal message", got)
		}
	})

	t.Run("default by code", func(t *testing.T) {
		t.Parallel()
		err := New("oauth", "Authenticate", ErrUnauthorized, nil).WithCode(CodeMissingToken)
		if got := Message(err); got != defaultMessages[CodeMissingToken] {
			t.Errorf("Message() = %q", got)
		}
	})
}

func TestReason_NonDomain(t *testing.T) {
	t.Parallel()

	if got := Reason(errors.New("plain")); got != "" {
		t.Errorf("Reason() = %q, want empty", got)
	}
	if got := Violations(errors.New("plain")); got != nil {
		t.Errorf("Violations() = %v, want nil", got)
	}
}
