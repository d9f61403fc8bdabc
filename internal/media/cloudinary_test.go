package media

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNew_RequiresCredentials(t *testing.T) {
	logger := testLogger()

	if _, err := New("demo", "key", "secret", logger); err != nil {
		t.Errorf("New(all credentials) error = %v", err)
	}

	for _, missing := range []string{"cloud", "key", "secret"} {
		cloud, key, secret := "demo", "key", "secret"
		switch missing {
		case "cloud":
			cloud = ""
		case "key":
			key = ""
		case "secret":
			secret = ""
		}
		if _, err := New(cloud, key, secret, logger); err == nil {
			t.Errorf("New() with missing %s error = nil, want error", missing)
		}
	}
}

func TestParseMediaURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		publicID     string
		resourceType string
		wantErr      bool
	}{
		{
			name:         "image",
			url:          "https://res.cloudinary.com/demo/image/upload/v123456/abcdef.jpg",
			publicID:     "social-app/abcdef",
			resourceType: "image",
		},
		{
			name:         "video",
			url:          "https://res.cloudinary.com/demo/video/upload/v123456/clip.mp4",
			publicID:     "social-app/clip",
			resourceType: "video",
		},
		{
			name:         "no extension",
			url:          "https://res.cloudinary.com/demo/image/upload/v123456/raw",
			publicID:     "social-app/raw",
			resourceType: "image",
		},
		{
			name:    "no path",
			url:     "https://res.cloudinary.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publicID, resourceType, err := parseMediaURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseMediaURL(%q) error = nil, want error", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseMediaURL(%q) error = %v", tt.url, err)
			}
			if publicID != tt.publicID {
				t.Errorf("publicID = %q, want %q", publicID, tt.publicID)
			}
			if resourceType != tt.resourceType {
				t.Errorf("resourceType = %q, want %q", resourceType, tt.resourceType)
			}
		})
	}
}

func TestSign(t *testing.T) {
	c := &Client{apiSecret: "abcd"}

	got := c.sign("public_id=social-app/x&timestamp=1700000000")
	if len(got) != 40 {
		t.Fatalf("sign() returned %d hex chars, want 40", len(got))
	}

	// Same input, same signature; different secret, different signature.
	if got != c.sign("public_id=social-app/x&timestamp=1700000000") {
		t.Error("sign() is not deterministic")
	}
	other := &Client{apiSecret: "efgh"}
	if got == other.sign("public_id=social-app/x&timestamp=1700000000") {
		t.Error("signatures with different secrets collide")
	}
}

func TestDelete(t *testing.T) {
	var gotForm map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		gotForm = map[string]string{
			"public_id": r.PostFormValue("public_id"),
			"api_key":   r.PostFormValue("api_key"),
			"signature": r.PostFormValue("signature"),
		}
		json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	defer ts.Close()

	c, err := New("demo", "key", "secret", testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.apiBase = ts.URL

	err = c.Delete(context.Background(),
		"https://res.cloudinary.com/demo/image/upload/v123456/abcdef.jpg")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if gotForm["public_id"] != "social-app/abcdef" {
		t.Errorf("public_id = %q, want %q", gotForm["public_id"], "social-app/abcdef")
	}
	if gotForm["api_key"] != "key" {
		t.Errorf("api_key = %q, want %q", gotForm["api_key"], "key")
	}
	if len(gotForm["signature"]) != 40 {
		t.Errorf("signature = %q, want a 40-char SHA-1 hex digest", gotForm["signature"])
	}
}

func TestDelete_FailureResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": "error"})
	}))
	defer ts.Close()

	c, err := New("demo", "key", "secret", testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.apiBase = ts.URL

	err = c.Delete(context.Background(),
		"https://res.cloudinary.com/demo/image/upload/v123456/abcdef.jpg")
	if err == nil {
		t.Error("Delete() with result=error returned nil, want error")
	}
}
