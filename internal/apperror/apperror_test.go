package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorMessagePriority(t *testing.T) {
	base := errors.New("base")
	err := &Error{Kind: KindValidation, Msg: "msg", Err: base}
	if err.Error() != "msg" {
		t.Fatalf("expected msg, got %q", err.Error())
	}
}

func TestError_ErrorFallsBackToWrapped(t *testing.T) {
	base := errors.New("base")
	err := &Error{Kind: KindValidation, Err: base}
	if err.Error() != "base" {
		t.Fatalf("expected base, got %q", err.Error())
	}
}

func TestError_ErrorFallsBackToKind(t *testing.T) {
	err := &Error{Kind: KindNotFound}
	if err.Error() != string(KindNotFound) {
		t.Fatalf("expected kind string, got %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	base := errors.New("base")
	err := &Error{Kind: KindValidation, Err: base}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to be reachable via errors.Is")
	}
}

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", Validation("bad payload", nil))
	if !Is(err, KindValidation) {
		t.Fatalf("expected validation kind match through wrapping")
	}
	if Is(err, KindNotFound) {
		t.Fatalf("unexpected not_found match")
	}
}

func TestIs_PlainError(t *testing.T) {
	if Is(errors.New("plain"), KindConflict) {
		t.Fatalf("plain error must not match any kind")
	}
}

func TestConstructors(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{NotFound("nf", nil), KindNotFound},
		{Validation("v", nil), KindValidation},
		{Conflict("c", nil), KindConflict},
		{Unavailable("u", nil), KindUnavailable},
	}
	for _, c := range cases {
		if !Is(c.err, c.kind) {
			t.Fatalf("expected kind %s for %v", c.kind, c.err)
		}
	}
}
