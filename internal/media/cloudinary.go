// Package media deletes externally hosted post media from Cloudinary.
//
// The app never proxies uploads — clients talk to Cloudinary directly and
// the server only stores the resulting URL. The one server-side concern is
// cleanup: when a post is deleted, its hosted image or video should go too.
// That cleanup is best-effort by design; callers log failures and move on.
package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// uploadFolder is where the client uploads media. Public ids are
// folder-qualified, so deletion must use the same prefix.
const uploadFolder = "social-app"

const defaultAPIBase = "https://api.cloudinary.com/v1_1"

// Client calls Cloudinary's destroy endpoint.
//
// Requests are signed per Cloudinary's upload-API scheme: the parameters
// are serialised in sorted order, the API secret appended, and the SHA-1
// hex digest sent alongside the API key. No SDK needed for a single
// endpoint.
type Client struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	apiBase    string // overridden in tests
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. All three credentials are required — main simply
// skips constructing a Client when they're absent, and the feed service
// treats a nil cleaner as "no cleanup".
func New(cloudName, apiKey, apiSecret string, logger *slog.Logger) (*Client, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("media: cloud name, API key and API secret are all required")
	}
	return &Client{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		apiBase:    defaultAPIBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}, nil
}

// Delete destroys the asset behind mediaURL.
// Returns an error on failure; the caller decides whether that matters
// (post deletion treats it as best-effort).
func (c *Client) Delete(ctx context.Context, mediaURL string) error {
	publicID, resourceType, err := parseMediaURL(mediaURL)
	if err != nil {
		return err
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign("public_id="+publicID+"&timestamp="+timestamp))

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", c.apiBase, c.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("media: building destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("media: calling destroy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("media: destroy returned status %d", resp.StatusCode)
	}

	var body struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("media: decoding destroy response: %w", err)
	}

	// "not found" is fine for our purposes — the asset is gone either way.
	if body.Result != "ok" && body.Result != "not found" {
		return fmt.Errorf("media: destroy failed: %s", body.Result)
	}

	c.logger.Info("media deleted",
		slog.String("publicID", publicID),
		slog.String("resourceType", resourceType),
	)
	return nil
}

// sign computes the Cloudinary request signature: SHA-1 of the serialised
// parameters with the API secret appended.
func (c *Client) sign(params string) string {
	sum := sha1.Sum([]byte(params + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

// parseMediaURL extracts the folder-qualified public id and resource type
// from a Cloudinary delivery URL, e.g.
//
//	https://res.cloudinary.com/demo/image/upload/v123456/abcdef.jpg
//	→ public id "social-app/abcdef", resource type "image"
func parseMediaURL(mediaURL string) (publicID, resourceType string, err error) {
	u, err := url.Parse(mediaURL)
	if err != nil || u.Path == "" {
		return "", "", fmt.Errorf("media: invalid media URL %q", mediaURL)
	}

	base := path.Base(u.Path)
	id := strings.TrimSuffix(base, path.Ext(base))
	if id == "" || id == "/" || id == "." {
		return "", "", fmt.Errorf("media: cannot derive public id from %q", mediaURL)
	}

	resourceType = "image"
	if strings.Contains(u.Path, "/video/") {
		resourceType = "video"
	}

	return uploadFolder + "/" + id, resourceType, nil
}
