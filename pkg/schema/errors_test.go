package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatPathWithTypeName(t *testing.T) {
	path := Path{
		{Kind: PathField, Field: "groups"},
		{Kind: PathIndex, Index: 0},
	}
	got := formatPath("User", path)
	if got != "User.groups[0]" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatPathWithoutTypeNameDropsLeadingDot(t *testing.T) {
	path := Path{{Kind: PathField, Field: "groups"}}
	got := formatPath("", path)
	if got != "groups" {
		t.Fatalf("got %q", got)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("User", Path{{Kind: PathField, Field: "groups"},
		{Kind: PathIndex, Index: 0}}, Str.String(), "int")
	msg := err.Error()
	if !strings.Contains(msg, "User.groups[0]") {
		t.Fatalf("missing path in %q", msg)
	}
	if !strings.Contains(msg, "expected STR") || !strings.Contains(msg, "got int") {
		t.Fatalf("missing expected/got in %q", msg)
	}
}

func TestRequiredFieldErrorNamesField(t *testing.T) {
	err := NewRequiredFieldError("User", nil, "email")
	if !errors.Is(err, ErrRequiredFieldMissing) {
		t.Fatal("expected errors.Is to match ErrRequiredFieldMissing")
	}
	if !strings.Contains(err.Error(), "email") {
		t.Fatalf("missing field name in %q", err.Error())
	}
}

func TestEncodeErrorIsForwardsToCause(t *testing.T) {
	err := NewEncodeError("User", nil, "boom", ErrNotImplemented)
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatal("expected errors.Is to forward through EncodeError.Cause")
	}
}

func TestIsLimitExceeded(t *testing.T) {
	if !IsLimitExceeded(ErrMaxDepthExceeded) {
		t.Fatal("expected ErrMaxDepthExceeded to be a limit error")
	}
	if IsLimitExceeded(ErrInvalidUTF8) {
		t.Fatal("did not expect ErrInvalidUTF8 to be a limit error")
	}
}

func TestDecodeErrorRendersOffsetAndPath(t *testing.T) {
	err := NewDecodeError("User", Path{{Kind: PathField, Field: "name"}}, 12, "truncated", ErrUnexpectedEOF)
	msg := err.Error()
	if !strings.Contains(msg, "User.name") || !strings.Contains(msg, "offset 12") {
		t.Fatalf("got %q", msg)
	}
}
