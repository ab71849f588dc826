package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorTypePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"permanent", NewPermanent("broken export", nil), IsPermanent},
		{"temporary", NewTemporary("source overloaded", nil), IsTemporary},
		{"not found", NewNotFound("plugin", "acme-seo"), IsNotFound},
		{"unauthorized", NewUnauthorized("token revoked"), IsUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("predicate rejected its own type: %v", tt.err)
			}
			if tt.check(errors.New("plain")) {
				t.Error("predicate accepted a plain error")
			}
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := NewTemporary("connection reset", nil)
	wrapped := fmt.Errorf("fetching products: %w", inner)

	if !IsTemporary(wrapped) {
		t.Error("expected IsTemporary to see through fmt wrapping")
	}
	if IsPermanent(wrapped) {
		t.Error("did not expect IsPermanent to match")
	}
}

func TestWrapPreservesCategory(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"temporary stays temporary", NewTemporary("timeout", nil), IsTemporary},
		{"not found stays not found", NewNotFound("theme", "storefront-classic"), IsNotFound},
		{"unauthorized stays unauthorized", NewUnauthorized("bad token"), IsUnauthorized},
		{"plain becomes permanent", errors.New("boom"), IsPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "context")
			if !tt.check(wrapped) {
				t.Errorf("wrapping changed the category of %v", tt.err)
			}
			if !errors.Is(wrapped, tt.err) {
				t.Errorf("wrapped error lost its cause: %v", wrapped)
			}
		})
	}

	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestNotFoundAccessors(t *testing.T) {
	err := NewNotFound("plugin", "acme-seo")

	var nfe *NotFoundError
	if !As(err, &nfe) {
		t.Fatal("expected NotFoundError")
	}
	if nfe.Resource() != "plugin" || nfe.ID() != "acme-seo" {
		t.Errorf("unexpected accessors: %s/%s", nfe.Resource(), nfe.ID())
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		name   string
	}{
		{http.StatusNotFound, IsNotFound, "404"},
		{http.StatusGone, IsNotFound, "410"},
		{http.StatusUnauthorized, IsUnauthorized, "401"},
		{http.StatusForbidden, IsUnauthorized, "403"},
		{http.StatusTooManyRequests, IsTemporary, "429"},
		{http.StatusServiceUnavailable, IsTemporary, "503"},
		{520, IsTemporary, "520"},
		{http.StatusConflict, IsPermanent, "409"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, "product listing")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("status %d classified as %T", tt.status, err)
			}
		})
	}

	if err := FromStatus(http.StatusOK, "product listing"); err != nil {
		t.Errorf("expected nil for 200, got %v", err)
	}
	if err := FromStatus(http.StatusCreated, "product upload"); err != nil {
		t.Errorf("expected nil for 201, got %v", err)
	}
}
