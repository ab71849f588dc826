package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/storemover/smi/pkg/config"
	"github.com/storemover/smi/pkg/errors"
	"github.com/storemover/smi/pkg/httpclient"
	"github.com/storemover/smi/pkg/retry"
)

func newDirectory(t *testing.T, serverURL string, maxRetries int) *Directory {
	t.Helper()

	policy := retry.New(retry.Config{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}, nil)
	client := httpclient.New(config.HTTPClientConfig{Timeout: 5 * time.Second}, serverURL, policy)
	t.Cleanup(func() { _ = client.Close() })

	return New(client)
}

func TestLookupPluginFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != pluginInfoPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("request[slug]") != "seo-toolkit" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Plugin{Name: "SEO Toolkit", Slug: "seo-toolkit", Version: "2.1.0"})
	}))
	defer server.Close()

	dir := newDirectory(t, server.URL, 0)
	plugin, err := dir.LookupPlugin(context.Background(), "seo-toolkit")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if plugin.Name != "SEO Toolkit" || plugin.Version != "2.1.0" {
		t.Errorf("unexpected plugin: %+v", plugin)
	}
}

func TestLookupPluginUnlistedIsNotFoundWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := newDirectory(t, server.URL, 3)
	_, err := dir.LookupPlugin(context.Background(), "ghost-plugin")
	if !errors.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("a 404 must not be retried, saw %d attempts", calls.Load())
	}

	var notFound *errors.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected a NotFoundError, got %T", err)
	}
	if notFound.ID() != "ghost-plugin" {
		t.Errorf("expected the slug in the error, got %q", notFound.ID())
	}
}

func TestLookupThemeRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Theme{Name: "Storefront", Slug: "storefront"})
	}))
	defer server.Close()

	dir := newDirectory(t, server.URL, 2)
	theme, err := dir.LookupTheme(context.Background(), "storefront")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if theme.Slug != "storefront" {
		t.Errorf("unexpected theme: %+v", theme)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestLookupThemeServerErrorAfterBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := newDirectory(t, server.URL, 1)
	_, err := dir.LookupTheme(context.Background(), "storefront")
	if !errors.IsTemporary(err) {
		t.Fatalf("expected a temporary error for an exhausted 500, got %v", err)
	}
}
