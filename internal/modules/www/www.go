// Package www loads http:// and https:// pages.
package www

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/modules/document"
	"github.com/HFT/cream-browser/internal/view"
)

const (
	DefaultUserAgent = "cream-browser"
	DefaultTimeout   = 30 * time.Second
)

// Options configures the module.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Module fetches pages with a shared resty client.
type Module struct {
	client *resty.Client
	logger *zap.Logger
}

// New creates the module.
func New(opts Options) *Module {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	return &Module{client: client, logger: logger.Named("www")}
}

func (m *Module) Name() string { return "www" }

// Client exposes the HTTP client so downloads share its settings.
func (m *Module) Client() *resty.Client { return m.client }

func (m *Module) NewView(p view.Poster) view.View {
	v := &View{module: m}
	v.Init(p)
	return v
}

// Response is a fetched resource before rendering.
type Response struct {
	URI         string
	Status      int
	ContentType string
	Body        []byte
}

// Get fetches uri. Redirects are followed and URI is the final location.
func (m *Module) Get(ctx context.Context, uri string) (*Response, error) {
	resp, err := m.client.R().SetContext(ctx).Get(uri)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 400 {
		return nil, fmt.Errorf("HTTP %s", resp.Status())
	}

	final := uri
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		final = raw.Request.URL.String()
	}

	m.logger.Debug("fetched",
		zap.String("uri", final),
		zap.Int("status", status),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("time", resp.Time()),
	)

	return &Response{
		URI:         final,
		Status:      status,
		ContentType: resp.Header().Get("Content-Type"),
		Body:        resp.Body(),
	}, nil
}

// Fetch gets uri and renders it.
func (m *Module) Fetch(ctx context.Context, uri string) (*document.Document, error) {
	resp, err := m.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	return document.Parse(resp.URI, resp.ContentType, resp.Body)
}
