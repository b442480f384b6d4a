// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"console-service/internal/metrics"
	xerrors "console-service/internal/pkg/errors"
	"console-service/internal/pkg/reqid"
	"console-service/internal/pkg/session"
	"console-service/internal/pkg/token"

	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

// Envelope is the uniform response shape of the remote API.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Code    string          `json:"code,omitempty"`
	Details interface{}     `json:"details,omitempty"`
	Meta    Meta            `json:"meta"`
}

type Meta struct {
	Timestamp  string      `json:"timestamp"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of a paginated collection.
type Page[T any] struct {
	Items      []T
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

// Client talks to the remote account API. It holds no per-user state: the
// bearer token is resolved from the token store for the session id on ctx.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  token.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(baseURL string, httpClient *http.Client, tokens token.Store, m *metrics.Metrics, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tokens:  tokens,
		metrics: m,
		logger:  logger,
	}
}

// call describes one outbound request. Endpoint is the low-cardinality
// route template used for metrics and logs.
type call struct {
	Method   string
	Path     string
	Endpoint string
	Query    url.Values
	Body     interface{}
}

// do performs the call and decodes envelope.data into out (when non-nil).
// It never retries.
func (c *Client) do(ctx context.Context, in call, out interface{}) (*Meta, error) {
	start := time.Now()
	status, meta, err := c.roundTrip(ctx, in, out)
	c.metrics.ObserveAPI(in.Method, in.Endpoint, start, status, err)

	if err != nil {
		c.logger.Warn("api call failed",
			zap.String("method", in.Method),
			zap.String("endpoint", in.Endpoint),
			zap.Int("status", status),
			zap.String("request_id", reqid.FromContext(ctx)),
			zap.Error(err),
		)
		return nil, err
	}
	return meta, nil
}

func (c *Client) roundTrip(ctx context.Context, in call, out interface{}) (int, *Meta, error) {
	req, err := c.newRequest(ctx, in)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, xerrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, xerrors.NewNetworkError(err)
	}

	if resp.StatusCode < http.StatusBadRequest && len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, &Meta{}, nil // 204 and friends
	}

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest || (decodeErr == nil && !env.Success) {
		apiErr := &xerrors.APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Message
			apiErr.Code = env.Code
			apiErr.Details = env.Details
		}
		return resp.StatusCode, nil, apiErr
	}
	if decodeErr != nil {
		return resp.StatusCode, nil, xerrors.NewMalformedError(resp.StatusCode, decodeErr)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, nil, xerrors.NewMalformedError(resp.StatusCode, err)
		}
	}
	return resp.StatusCode, &env.Meta, nil
}

func (c *Client) newRequest(ctx context.Context, in call) (*http.Request, error) {
	target := c.baseURL + in.Path
	if len(in.Query) > 0 {
		target += "?" + in.Query.Encode()
	}

	var body io.Reader
	if in.Body != nil {
		data, err := json.Marshal(in.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, in.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := reqid.FromContext(ctx); id != "" {
		req.Header.Set(reqid.Header, id)
	}

	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// authorize attaches the stored access token, if the session has one.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	sid, ok := session.IDFromContext(ctx)
	if !ok {
		return nil
	}
	pair, ok, err := c.tokens.Read(ctx, sid)
	if err != nil {
		return fmt.Errorf("failed to load access token: %w", err)
	}
	if ok {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", fmt.Sprintf("%d", page))
	q.Set("limit", fmt.Sprintf("%d", limit))
	return q
}

func newPage[T any](items []T, page, limit int, meta *Meta) *Page[T] {
	if page < 1 {
		page = 1
	}
	p := &Page[T]{Items: items, Page: page, Limit: limit, TotalPages: 1}
	if p.Items == nil {
		p.Items = []T{}
	}
	if meta != nil && meta.Pagination != nil {
		if meta.Pagination.TotalPages > 0 {
			p.TotalPages = meta.Pagination.TotalPages
		}
		p.Total = meta.Pagination.Total
	}
	return p
}

func errMissing(what string) error {
	return errors.New("response is missing " + what)
}
