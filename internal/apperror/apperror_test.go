package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := errors.New("disk I/O error")
	err := fmt.Errorf("insert photo: %w", Wrap(StoreWriteFailed, "failed to insert photo", base))

	if KindOf(err) != StoreWriteFailed {
		t.Errorf("Expected StoreWriteFailed, got %v", KindOf(err))
	}
	if !errors.Is(err, base) {
		t.Error("Expected underlying cause to be reachable")
	}
	if !Is(err, StoreWriteFailed) {
		t.Error("Is should match the wrapped kind")
	}
}

func TestWrap_NilError(t *testing.T) {
	if Wrap(StoreReadFailed, "ignored", nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if KindOf(errors.New("plain")) != Unknown {
		t.Error("plain errors have no kind")
	}
	if Is(nil, Unknown) {
		t.Error("nil error matches no kind")
	}
}

func TestError_Message(t *testing.T) {
	err := New(StoreUnavailable, "store is not open")
	if err.Error() != "store is not open" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if StoreUnavailable.String() != "store_unavailable" {
		t.Errorf("Unexpected kind name %q", StoreUnavailable.String())
	}
}
