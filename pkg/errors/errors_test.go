package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "max_depth must be between 0 and 10, got %d", 42)
	if !strings.Contains(err.Error(), "INVALID_CONFIG") {
		t.Errorf("Error() missing code: %v", err)
	}
	if !strings.Contains(err.Error(), "got 42") {
		t.Errorf("Error() missing formatted message: %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch %s", "requests")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !Is(err, ErrCodeNetwork) {
		t.Error("wrapped error should match its code")
	}
	if Is(err, ErrCodeInternal) {
		t.Error("wrapped error should not match a different code")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"structured error", New(ErrCodeInvalidPackage, "bad"), ErrCodeInvalidPackage},
		{"plain error", stderrors.New("plain"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "package_name cannot be empty")
	if got := UserMessage(err); got != "package_name cannot be empty" {
		t.Errorf("UserMessage() = %q", got)
	}
	plain := stderrors.New("boom")
	if got := UserMessage(plain); got != "boom" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		wantErr bool
	}{
		{"valid simple", "requests", false},
		{"valid with hyphen", "typing-extensions", false},
		{"empty", "", true},
		{"path traversal", "../etc/passwd", true},
		{"double slash", "a//b", true},
		{"control char", "pkg\x01name", true},
		{"null byte", "pkg\x00", true},
		{"leading slash", "/abs", true},
		{"leading dash", "-flag", true},
		{"too long", strings.Repeat("a", 300), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.pkg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.pkg, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("ValidatePackageName(%q) code = %q, want INVALID_PACKAGE", tt.pkg, GetCode(err))
			}
		})
	}
}
