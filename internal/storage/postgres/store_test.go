package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/mathdrill/internal/domain"
)

func TestFallbackIndexes(t *testing.T) {
	tests := []struct {
		name      string
		problems  []domain.Problem
		wantValid bool
		want      string
	}{
		{"complete", []domain.Problem{{Display: "a"}, {Display: "b"}}, false, ""},
		{"empty", nil, false, ""},
		{"some fallbacks", []domain.Problem{{Fallback: true}, {}, {Fallback: true}}, true, "[0,2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fallbackIndexes(tt.problems)
			if err != nil {
				t.Fatalf("fallbackIndexes() error = %v", err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if string(got.RawMessage) != tt.want {
				t.Errorf("RawMessage = %s, want %s", got.RawMessage, tt.want)
			}
		})
	}
}

func TestWorksheetStore_InvalidIDs(t *testing.T) {
	// ids are validated before the pool is touched
	s := NewWorksheetStore(nil, nil)
	ctx := context.Background()

	if _, err := s.Get(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrWorksheetNotFound) {
		t.Errorf("Get() error = %v, want ErrWorksheetNotFound", err)
	}
	if err := s.Delete(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrWorksheetNotFound) {
		t.Errorf("Delete() error = %v, want ErrWorksheetNotFound", err)
	}
	if err := s.Save(ctx, &domain.Worksheet{ID: "x"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Save() error = %v, want ErrInvalidInput", err)
	}
}
