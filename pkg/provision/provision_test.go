package provision

import (
	"context"
	"encoding/json"
	"io"
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

func newProvisioner(t *testing.T, serverURL string, maxRetries int) *Provisioner {
	t.Helper()

	policy := retry.New(retry.Config{
		MaxRetries: maxRetries,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}, nil)
	client := httpclient.New(config.HTTPClientConfig{Timeout: 5 * time.Second}, serverURL, policy)
	t.Cleanup(func() { _ = client.Close() })

	return New(client, config.TargetConfig{StoreURL: serverURL, APIToken: "target-token"})
}

func TestCreateProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != productsPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer target-token" {
			t.Errorf("missing auth header: %v", r.Header)
		}

		var input ProductInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		if input.SKU != "SKU-1" {
			t.Errorf("unexpected payload: %+v", input)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreatedProduct{ID: "p-1", Slug: input.Slug})
	}))
	defer server.Close()

	prov := newProvisioner(t, server.URL, 0)
	created, err := prov.CreateProduct(context.Background(), ProductInput{
		Name: "Widget",
		Slug: "widget",
		SKU:  "SKU-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.ID != "p-1" || created.Slug != "widget" {
		t.Errorf("unexpected created product: %+v", created)
	}
}

func TestCreateProductRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreatedProduct{ID: "p-1"})
	}))
	defer server.Close()

	prov := newProvisioner(t, server.URL, 2)
	if _, err := prov.CreateProduct(context.Background(), ProductInput{Slug: "widget"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestCreateProductBadTokenIsUnauthorized(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	prov := newProvisioner(t, server.URL, 3)
	_, err := prov.CreateProduct(context.Background(), ProductInput{Slug: "widget"})
	if !errors.IsUnauthorized(err) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("a 401 must not be retried, saw %d attempts", calls.Load())
	}
}

func TestCreateProductValidationErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	prov := newProvisioner(t, server.URL, 1)
	if _, err := prov.CreateProduct(context.Background(), ProductInput{}); !errors.IsPermanent(err) {
		t.Fatalf("expected a permanent error for a 422, got %v", err)
	}
}

func TestUploadMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != mediaPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "image/png" {
			t.Errorf("unexpected content type %s", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "png-bytes" {
			t.Errorf("unexpected body %q", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Media{ID: "m-1", URL: "https://cdn.example.com/logo.png"})
	}))
	defer server.Close()

	prov := newProvisioner(t, server.URL, 0)
	media, err := prov.UploadMedia(context.Background(), "logo.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if media.ID != "m-1" {
		t.Errorf("unexpected media: %+v", media)
	}
}
