package webfont

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"fontdl/common"
)

// Fetcher talks to the font service.
type Fetcher interface {
	// Stylesheet returns stylesheet text decoded to UTF-8.
	Stylesheet(ctx context.Context, url, userAgent string) (string, error)
	// Download stores resource at dest overwriting whatever is there.
	Download(ctx context.Context, url, dest string) error
}

// ClientOptions tune HTTP client.
type ClientOptions struct {
	// Timeout for a single request, zero means no timeout.
	Timeout   time.Duration
	TypeCheck common.TypeCheck
	// Transport is used instead of http.DefaultTransport when set.
	Transport http.RoundTripper
}

// Client is Fetcher implementation over HTTP.
type Client struct {
	hc        *http.Client
	typeCheck common.TypeCheck
	log       *zap.Logger
}

// NewClient creates a new Client.
func NewClient(opts ClientOptions, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		hc:        &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		typeCheck: opts.TypeCheck,
		log:       log.Named("fetch"),
	}
}

func (c *Client) get(ctx context.Context, url, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %q", resp.Status)
	}
	return resp, nil
}

// Stylesheet fetches stylesheet. Failed request and empty body both result
// in ErrEmptyResponse.
func (c *Client) Stylesheet(ctx context.Context, url, userAgent string) (string, error) {
	c.log.Debug("Requesting stylesheet", zap.String("url", url))

	resp, err := c.get(ctx, url, userAgent)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEmptyResponse, url, err)
	}
	defer resp.Body.Close()

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEmptyResponse, url, err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrEmptyResponse, url, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: %s: empty body", ErrEmptyResponse, url)
	}
	return string(data), nil
}

// Download fetches resource and writes it to dest through a temporary file
// in the same directory.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	c.log.Debug("Downloading font", zap.String("url", url), zap.String("path", dest))

	fail := func(err error) error {
		return &DownloadError{URL: url, Path: dest, Err: err}
	}

	resp, err := c.get(ctx, url, "")
	if err != nil {
		return fail(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(err)
	}
	if err := c.checkType(data, dest); err != nil {
		return fail(err)
	}

	tmp := filepath.Join(filepath.Dir(dest), "."+uuid.NewString()+".part")
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fail(errors.Join(err, os.Remove(tmp)))
	}
	return nil
}

var errUnexpectedType = errors.New("downloaded data does not look like a font")

func (c *Client) checkType(data []byte, dest string) error {
	if !c.typeCheck.Enabled() {
		return nil
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(dest), "."))
	switch ext {
	case "woff", "woff2", "ttf", "otf":
	default:
		return nil
	}
	if filetype.Is(data, ext) {
		return nil
	}
	if c.typeCheck == common.TypeCheckStrict {
		return fmt.Errorf("%w: expected %s", errUnexpectedType, ext)
	}
	c.log.Warn("Downloaded data does not look like expected font type, keeping it anyway",
		zap.String("path", dest), zap.String("type", ext), zap.Int("size", len(data)))
	return nil
}
