// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/jwst-live/internal/httputil"
	"github.com/pdiddy/jwst-live/internal/render"
	"github.com/pdiddy/jwst-live/pkg/types"
)

// Poster publishes one post. baseDir is the run directory the post came
// from; image blocks name files in its screenshots directory.
type Poster interface {
	Publish(ctx context.Context, post types.Post, baseDir string) (remoteID string, err error)
}

// Client publishes posts to the platform's HTTP API. It logs in lazily and
// logs in again once if the session expires.
type Client struct {
	cfg     types.PublishConfig
	http    *http.Client
	limiter *rate.Limiter

	mu    sync.Mutex
	token string
}

// NewClient builds a client from an explicit configuration. Credentials
// must be present.
func NewClient(cfg types.PublishConfig, hc *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("publish base URL is not configured")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("publish credentials are not configured")
	}
	if cfg.Handle == "" {
		return nil, fmt.Errorf("publish handle is not configured")
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		cfg:     cfg,
		http:    hc,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type postBlock struct {
	Type       string `json:"type"`
	Content    string `json:"content,omitempty"`
	Attachment *int   `json:"attachment,omitempty"`
	AltText    string `json:"alt_text,omitempty"`
}

type postRequest struct {
	Headline string      `json:"headline"`
	Blocks   []postBlock `json:"blocks"`
	Tags     []string    `json:"tags"`
	Draft    bool        `json:"draft"`
}

type postResponse struct {
	ID string `json:"id"`
}

// Publish uploads the post with its image attachments and returns the
// platform's id for it. Image blocks whose file is missing are dropped.
func (c *Client) Publish(ctx context.Context, post types.Post, baseDir string) (string, error) {
	body, contentType, err := c.encodePost(ctx, post, baseDir)
	if err != nil {
		return "", err
	}

	for attempt := 0; ; attempt++ {
		token, err := c.session(ctx)
		if err != nil {
			return "", err
		}

		endpoint := c.cfg.BaseURL + "/projects/" + url.PathEscape(c.cfg.Handle) + "/posts"
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.do(ctx, req)
		if err != nil {
			return "", fmt.Errorf("publishing %q: %w", post.Title, err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			resp.Body.Close()
			c.clearSession()
			continue
		}

		var pr postResponse
		err = decode(resp, &pr)
		if err != nil {
			return "", fmt.Errorf("publishing %q: %w", post.Title, err)
		}
		return pr.ID, nil
	}
}

func (c *Client) encodePost(ctx context.Context, post types.Post, baseDir string) ([]byte, string, error) {
	log := zerolog.Ctx(ctx)
	pr := postRequest{Headline: post.Title, Tags: post.Tags, Draft: c.cfg.Draft}
	var files []string

	for _, b := range post.Body {
		switch b.Type {
		case types.BlockMarkdown:
			pr.Blocks = append(pr.Blocks, postBlock{Type: "markdown", Content: b.Value})
		case types.BlockImage:
			path := filepath.Join(baseDir, render.ScreenshotsDir, b.Value)
			if _, err := os.Stat(path); err != nil {
				log.Warn().Str("title", post.Title).Str("image", path).Msg("dropping image block without a screenshot")
				continue
			}
			idx := len(files)
			files = append(files, path)
			pr.Blocks = append(pr.Blocks, postBlock{Type: "attachment", Attachment: &idx, AltText: b.AltText})
		default:
			log.Warn().Str("title", post.Title).Str("type", string(b.Type)).Msg("dropping unknown block type")
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="post"`)
	h.Set("Content-Type", "application/json")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(part).Encode(pr); err != nil {
		return nil, "", fmt.Errorf("encoding post: %w", err)
	}

	for _, path := range files {
		if err := attach(mw, path); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func attach(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening attachment: %w", err)
	}
	defer f.Close()

	part, err := mw.CreateFormFile("attachments", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading attachment %s: %w", path, err)
	}
	return nil
}

// session returns the current token, logging in when there is none.
func (c *Client) session(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}

	body, err := json.Marshal(loginRequest{Username: c.cfg.Username, Password: c.cfg.Password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	var lr loginResponse
	if err := decode(resp, &lr); err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	if lr.Token == "" {
		return "", fmt.Errorf("logging in: empty session token")
	}
	c.token = lr.Token
	return c.token, nil
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// do waits for the rate limiter, then sends req with retries.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	return httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
}

// decode checks for a 2xx status and decodes the JSON body into v. The
// response body is always closed.
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
