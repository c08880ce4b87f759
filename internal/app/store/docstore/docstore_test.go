package docstore

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestOpen_NotConfigured(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"empty", Config{}},
		{"missing database", Config{URI: "mongodb://localhost:27017"}},
		{"missing uri", Config{Database: "ejc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Open(context.Background(), tt.cfg)
			if !errors.Is(err, ErrNotConfigured) {
				t.Errorf("Open() err = %v, want ErrNotConfigured", err)
			}
			if h != nil {
				t.Error("expected nil handle")
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	if !errors.Is(NotFound(mongo.ErrNoDocuments), ErrNotFound) {
		t.Error("ErrNoDocuments should map to ErrNotFound")
	}
	other := errors.New("boom")
	if NotFound(other) != other {
		t.Error("other errors should pass through")
	}
	if NotFound(nil) != nil {
		t.Error("nil should stay nil")
	}
}

func TestHandle_CloseNil(t *testing.T) {
	var h *Handle
	if err := h.Close(context.Background()); err != nil {
		t.Errorf("Close on nil handle: %v", err)
	}
}
