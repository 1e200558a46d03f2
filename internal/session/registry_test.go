package session

import (
	"errors"
	"testing"
	"time"
)

func TestCreateDefaults(t *testing.T) {
	registry := NewRegistry()

	before := time.Now().UTC()
	sess := registry.Create("", "")

	if sess.SessionID == "" {
		t.Fatal("Session ID should not be empty")
	}
	if sess.Code != "" {
		t.Errorf("Expected empty code, got %q", sess.Code)
	}
	if sess.Language != "javascript" {
		t.Errorf("Expected default language 'javascript', got %q", sess.Language)
	}
	if sess.UpdatedAt.Before(before) {
		t.Errorf("UpdatedAt %v is earlier than creation time %v", sess.UpdatedAt, before)
	}
}

func TestCreateWithInitialValues(t *testing.T) {
	registry := NewRegistry()

	sess := registry.Create("console.log('hi')", "typescript")

	if sess.Code != "console.log('hi')" {
		t.Errorf("Expected initial code to be stored, got %q", sess.Code)
	}
	if sess.Language != "typescript" {
		t.Errorf("Expected initial language to be stored, got %q", sess.Language)
	}
}

func TestCreateUniqueIDs(t *testing.T) {
	registry := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		sess := registry.Create("", "")
		if seen[sess.SessionID] {
			t.Fatalf("Duplicate session ID generated: %s", sess.SessionID)
		}
		seen[sess.SessionID] = true
	}
}

func TestGetReturnsCreatedSession(t *testing.T) {
	registry := NewRegistry()

	created := registry.Create("some code", "python")

	got, err := registry.Get(created.SessionID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for an existing session")
	}
	if *got != *created {
		t.Errorf("Get returned %+v, want %+v", got, created)
	}
}

func TestGetMissingIsNotAnError(t *testing.T) {
	registry := NewRegistry()

	got, err := registry.Get("never-created")
	if err != nil {
		t.Fatalf("Get on missing ID should not error, got %v", err)
	}
	if got != nil {
		t.Errorf("Get on missing ID should return nil, got %+v", got)
	}
}

func TestGetEmptyIDIsInvalid(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for empty ID, got %v", err)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	registry := NewRegistry()

	created := registry.Create("original", "javascript")

	got, _ := registry.Get(created.SessionID)
	got.Code = "mutated from outside"

	again, _ := registry.Get(created.SessionID)
	if again.Code != "original" {
		t.Error("Mutating a returned session must not affect registry state")
	}
}

func TestUpdateCode(t *testing.T) {
	registry := NewRegistry()

	sess := registry.Create("v0", "javascript")
	time.Sleep(time.Millisecond)

	if err := registry.UpdateCode(sess.SessionID, "v1"); err != nil {
		t.Fatalf("UpdateCode failed: %v", err)
	}

	got, _ := registry.Get(sess.SessionID)
	if got.Code != "v1" {
		t.Errorf("Expected code 'v1', got %q", got.Code)
	}
	if got.Language != "javascript" {
		t.Errorf("UpdateCode must not touch language, got %q", got.Language)
	}
	if !got.UpdatedAt.After(sess.UpdatedAt) {
		t.Errorf("UpdatedAt should advance: %v -> %v", sess.UpdatedAt, got.UpdatedAt)
	}
}

func TestUpdateCodeIdenticalValueRefreshesTimestamp(t *testing.T) {
	registry := NewRegistry()

	sess := registry.Create("same", "javascript")
	time.Sleep(time.Millisecond)

	if err := registry.UpdateCode(sess.SessionID, "same"); err != nil {
		t.Fatalf("Identical write should be accepted: %v", err)
	}

	got, _ := registry.Get(sess.SessionID)
	if !got.UpdatedAt.After(sess.UpdatedAt) {
		t.Error("Identical write should still refresh UpdatedAt")
	}
}

func TestUpdateCodeMissingSession(t *testing.T) {
	registry := NewRegistry()

	err := registry.UpdateCode("ghost", "code")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateLanguage(t *testing.T) {
	registry := NewRegistry()

	sess := registry.Create("keep me", "javascript")
	time.Sleep(time.Millisecond)

	if err := registry.UpdateLanguage(sess.SessionID, "python"); err != nil {
		t.Fatalf("UpdateLanguage failed: %v", err)
	}

	got, _ := registry.Get(sess.SessionID)
	if got.Language != "python" {
		t.Errorf("Expected language 'python', got %q", got.Language)
	}
	if got.Code != "keep me" {
		t.Errorf("UpdateLanguage must not touch code, got %q", got.Code)
	}
	if !got.UpdatedAt.After(sess.UpdatedAt) {
		t.Error("UpdatedAt should advance on language change")
	}
}

func TestUpdateLanguageValidation(t *testing.T) {
	registry := NewRegistry()
	sess := registry.Create("", "")

	if err := registry.UpdateLanguage(sess.SessionID, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for empty language, got %v", err)
	}
	if err := registry.UpdateLanguage("ghost", "go"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestClear(t *testing.T) {
	registry := NewRegistry()

	registry.Create("", "")
	registry.Create("", "")

	if registry.Len() != 2 {
		t.Fatalf("Expected 2 sessions, got %d", registry.Len())
	}

	registry.Clear()

	if registry.Len() != 0 {
		t.Errorf("Expected 0 sessions after Clear, got %d", registry.Len())
	}
}
