package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestPostJSONDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := New(time.Second).PostJSON(context.Background(), server.URL, map[string]string{"a": "b"}, &out)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !out.OK {
		t.Fatal("expected ok=true")
	}
}

func TestPostFormSendsEncodedValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("could not parse form: %v", err)
		}
		if r.PostFormValue("code") != "abc123" {
			t.Errorf("expected code abc123, got %q", r.PostFormValue("code"))
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	values := url.Values{"code": {"abc123"}}
	if err := New(time.Second).PostForm(context.Background(), server.URL, values, nil); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestGetJSONSetsBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("expected bearer header, got %q", auth)
		}
		w.Write([]byte(`{"email": "a@b.com"}`))
	}))
	defer server.Close()

	var out struct {
		Email string `json:"email"`
	}
	if err := New(time.Second).GetJSON(context.Background(), server.URL, "tok", &out); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out.Email != "a@b.com" {
		t.Fatalf("unexpected email: %q", out.Email)
	}
}

func TestNon2xxBecomesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	err := New(time.Second).GetJSON(context.Background(), server.URL, "", nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", httpErr.StatusCode)
	}
	if httpErr.Body != "nope" {
		t.Fatalf("unexpected body: %q", httpErr.Body)
	}
}
