package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nhle/mail-triage/internal/logging"
	"github.com/nhle/mail-triage/internal/model"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client is a thin HTTP client for the triage backend REST API. Each call
// is a single request/response pair: no retries, no batching.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logrus.Entry
}

// NewClient creates a client rooted at baseURL (e.g. http://localhost:3001/api).
// A zero timeout leaves requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, log *logrus.Entry) *Client {
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.WithField("component", "api"),
	}
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListEmails performs GET /emails with the non-empty fields of q.
func (c *Client) ListEmails(ctx context.Context, q model.SearchQuery) (*model.EmailPage, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, "/emails", queryValues(q), nil, &resp); err != nil {
		return nil, err
	}
	return pageFrom(resp)
}

// SearchEmails performs POST /emails/search with q as the JSON body.
func (c *Client) SearchEmails(ctx context.Context, q model.SearchQuery) (*model.EmailPage, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodPost, "/emails/search", nil, q, &resp); err != nil {
		return nil, err
	}
	return pageFrom(resp)
}

// GetEmail performs GET /emails/{id}.
func (c *Client) GetEmail(ctx context.Context, id string) (*model.Email, error) {
	var email model.Email
	if err := c.doData(ctx, http.MethodGet, "/emails/"+url.PathEscape(id), nil, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

// UpdateCategory performs PATCH /emails/{id}/category. CategoryUnset is
// rejected before any request is made.
func (c *Client) UpdateCategory(ctx context.Context, id string, category model.Category) error {
	if !category.IsSet() {
		return fmt.Errorf("updating category of %s: %w: %d", id, model.ErrUnknownCategory, int(category))
	}

	var env envelope
	path := "/emails/" + url.PathEscape(id) + "/category"
	if err := c.do(ctx, http.MethodPatch, path, nil, categoryRequest{Category: category}, &env); err != nil {
		return err
	}
	if env.failed() {
		return fmt.Errorf("%w: %s", ErrApplication, env.reason())
	}
	return nil
}

// Recategorize performs POST /emails/{id}/recategorize and returns the
// email with the category chosen by the backend.
func (c *Client) Recategorize(ctx context.Context, id string) (*model.Email, error) {
	var email model.Email
	path := "/emails/" + url.PathEscape(id) + "/recategorize"
	if err := c.doData(ctx, http.MethodPost, path, nil, &email); err != nil {
		return nil, err
	}
	return &email, nil
}

// SuggestReply performs POST /emails/{id}/suggest-reply.
func (c *Client) SuggestReply(ctx context.Context, id string) (*model.SuggestedReply, error) {
	var reply model.SuggestedReply
	path := "/emails/" + url.PathEscape(id) + "/suggest-reply"
	if err := c.doData(ctx, http.MethodPost, path, nil, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Metadata performs GET /metadata.
func (c *Client) Metadata(ctx context.Context) (*model.Metadata, error) {
	var md model.Metadata
	if err := c.doData(ctx, http.MethodGet, "/metadata", nil, &md); err != nil {
		return nil, err
	}
	if md.Folders == nil {
		md.Folders = make(map[string][]string)
	}
	return &md, nil
}

// Healthy performs GET /health. Any transport error, non-2xx status or
// body other than success: true counts as unhealthy.
func (c *Client) Healthy(ctx context.Context) bool {
	var resp healthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &resp); err != nil {
		c.log.WithError(err).Debug("health probe failed")
		return false
	}
	return resp.Success
}

// doData performs a request whose response wraps its payload in
// {success, data} and decodes data into result.
func (c *Client) doData(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var env envelope
	if err := c.do(ctx, method, path, nil, body, &env); err != nil {
		return err
	}
	if env.failed() {
		return fmt.Errorf("%w on %s %s: %s", ErrApplication, method, path, env.reason())
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return fmt.Errorf("empty data in response from %s %s", method, path)
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("decoding data from %s %s: %w", method, path, err)
	}
	return nil
}

// do is the core HTTP method that builds the request, maps non-2xx
// responses to *StatusError, and handles JSON (de)serialization.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body interface{},
	result interface{},
) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Debug("request failed")
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
		}
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && env.reason() != "" {
			statusErr.Message = env.reason()
		} else {
			statusErr.Message = strings.TrimSpace(string(respBody))
		}
		return statusErr
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf(
			"unmarshaling response from %s %s: %w",
			method, path, err,
		)
	}

	return nil
}

// queryValues encodes the non-empty fields of q. Empty strings and zero
// numbers are omitted so the backend sees no constraint.
func queryValues(q model.SearchQuery) url.Values {
	v := url.Values{}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Account != "" {
		v.Set("account", q.Account)
	}
	if q.Folder != "" {
		v.Set("folder", q.Folder)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.From != "" {
		v.Set("from", q.From)
	}
	if q.To != "" {
		v.Set("to", q.To)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// pageFrom converts a list response into an EmailPage, rejecting
// application-declared failures.
func pageFrom(resp listResponse) (*model.EmailPage, error) {
	if resp.Success != nil && !*resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrApplication, resp.Error)
	}
	emails := resp.Data
	if emails == nil {
		emails = []model.Email{}
	}
	return &model.EmailPage{
		Emails: emails,
		Total:  resp.Total,
		Limit:  resp.Limit,
		Offset: resp.Offset,
	}, nil
}
