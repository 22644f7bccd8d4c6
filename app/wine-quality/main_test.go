package main

import "testing"

func TestParseSeparator(t *testing.T) {
	t.Run("Semicolon", func(t *testing.T) {
		sep, err := parseSeparator(";")
		if err != nil {
			t.Fatalf("parseSeparator failed: %v", err)
		}
		if sep != ';' {
			t.Errorf("expected ';', got %q", sep)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if _, err := parseSeparator(""); err == nil {
			t.Error("expected error for an empty separator")
		}
	})

	t.Run("TooLong", func(t *testing.T) {
		if _, err := parseSeparator(";;"); err == nil {
			t.Error("expected error for a multi-character separator")
		}
	})
}
