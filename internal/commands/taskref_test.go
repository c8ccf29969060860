package commands

import (
	"testing"
)

func TestParseTaskRef_Position(t *testing.T) {
	ref, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "" {
		t.Errorf("expected no ID, got %q", ref.ID)
	}
	if ref.Num != 5 {
		t.Errorf("expected Num 5, got %d", ref.Num)
	}
}

func TestParseTaskRef_ID(t *testing.T) {
	ref, err := ParseTaskRef([]string{"id:42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "42" {
		t.Errorf("expected ID 42, got %q", ref.ID)
	}
	if ref.Num != 0 {
		t.Errorf("expected Num 0, got %d", ref.Num)
	}
}

func TestParseTaskRef_NoArgs_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{})
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_Invalid(t *testing.T) {
	tests := []string{"a1", "id:", "id: ", "-1", "1.5", "x"}

	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			_, err := ParseTaskRef([]string{arg})
			if err == nil {
				t.Fatalf("expected error for %q", arg)
			}
			expectedMsg := "invalid task reference: " + arg
			if err.Error() != expectedMsg {
				t.Errorf("expected %q, got %q", expectedMsg, err.Error())
			}
		})
	}
}
