package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("add trade: %w", NewValidationError("symbol", "", "must not be empty"))

	if !Is(err, ErrInputValidation) {
		t.Fatalf("expected ErrInputValidation in chain, got %v", err)
	}

	var ve *ValidationError
	if !As(err, &ve) {
		t.Fatal("expected As to find *ValidationError")
	}
	if ve.Field != "symbol" {
		t.Errorf("Field = %q, want symbol", ve.Field)
	}
}

func TestStorageErrorUnwrapsBoth(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("file", "set", "unlocked_achievements", cause)

	if !Is(err, ErrStorage) {
		t.Error("expected ErrStorage in chain")
	}
	if !Is(err, cause) {
		t.Error("expected underlying cause in chain")
	}
	want := `storage error [file] set "unlocked_achievements": disk full`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNotFoundHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"trade", TradeNotFound("t1"), ErrTradeNotFound},
		{"playbook", PlaybookNotFound("p1"), ErrPlaybookNotFound},
		{"challenge", ChallengeNotFound("c1"), ErrChallengeNotFound},
		{"achievement", AchievementNotFound("a1"), ErrAchievementNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.sentinel) {
				t.Errorf("%v does not match its sentinel", tt.err)
			}
			if !IsNotFound(tt.err) {
				t.Errorf("IsNotFound(%v) = false", tt.err)
			}
		})
	}

	if IsNotFound(ErrStorage) {
		t.Error("IsNotFound(ErrStorage) = true")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
	if got := Wrapf(ErrDataNotFound, "load %s", "profile").Error(); got != "load profile: data not found" {
		t.Errorf("Wrapf = %q", got)
	}
}
