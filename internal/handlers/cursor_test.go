package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 5, 1, 12, 30, 45, 123456789, time.UTC)
	id := uuid.New()

	cursor := encodeCursor(createdAt, id)

	gotTime, gotID, err := decodeCursor(cursor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotTime.Equal(createdAt) {
		t.Errorf("expected %v, got %v", createdAt, gotTime)
	}
	if gotID != id {
		t.Errorf("expected %s, got %s", id, gotID)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"no separator", "aGVsbG8"},
		{"bad timestamp", "bm90YXRpbWV8MDD"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := decodeCursor(tt.cursor); err == nil {
				t.Errorf("expected error for cursor %q", tt.cursor)
			}
		})
	}
}
