package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/dariemcarlosdev/secure-clean-api/internal/domain/errors"
	"github.com/dariemcarlosdev/secure-clean-api/internal/domain/repository"
	pkgerrors "github.com/dariemcarlosdev/secure-clean-api/pkg/errors"
)

const (
	DefaultTimeout = 10 * time.Second

	// MaxResponseBytes caps how much of an upstream body is buffered
	MaxResponseBytes = 8 << 20
)

// Client forwards GET requests to a fixed set of named upstreams
type Client struct {
	upstreams map[string]*url.URL
	http      *http.Client
	logger    *zap.Logger
}

// NewClient parses every upstream base URL up front. timeout <= 0 uses DefaultTimeout.
func NewClient(upstreams map[string]string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	parsed := make(map[string]*url.URL, len(upstreams))
	for name, raw := range upstreams {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("upstream %q: invalid base url %q", name, raw)
		}
		parsed[strings.ToLower(name)] = u
	}

	return &Client{
		upstreams: parsed,
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
	}, nil
}

var _ repository.ExternalAPIClient = (*Client)(nil)

func (c *Client) Forward(ctx context.Context, upstream, path, query string, header http.Header) (*repository.ExternalAPIResponse, error) {
	base, ok := c.upstreams[strings.ToLower(upstream)]
	if !ok {
		return nil, domainErrors.ErrUpstreamNotFound
	}

	target := *base
	target.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	target.RawQuery = query

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "invalid upstream request", err)
	}
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, pkgerrors.NewAppError(pkgerrors.ErrTimeout, "upstream timed out", err)
		}
		return nil, pkgerrors.NewAppError(pkgerrors.ErrUnavailable, "upstream unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, pkgerrors.NewAppError(pkgerrors.ErrUnavailable, "failed to read upstream response", err)
	}

	c.logger.Debug("Upstream request completed",
		zap.String("upstream", upstream),
		zap.String("path", target.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	return &repository.ExternalAPIResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
