// Package api implements the AuthAPI and ResourceAPI ports over the academy
// REST backend. The session token lives in an HTTP-only cookie held by the
// client's cookie jar; it is never surfaced to callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/ports"
)

const defaultRequestTimeout = 15 * time.Second

// Client talks to the academy REST backend.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

var (
	_ ports.AuthAPI     = (*Client)(nil)
	_ ports.ResourceAPI = (*Client)(nil)
)

// NewClient creates a Client for the backend at baseURL. A cookie jar is
// installed so the HTTP-only session cookie set by login is replayed on every
// subsequent request.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: timeout, Jar: jar},
		log:  log,
	}, nil
}

// NewClientWithJar is NewClient with a caller-supplied cookie jar, used by
// the CLI to persist the session cookie across process invocations.
func NewClientWithJar(baseURL string, timeout time.Duration, jar http.CookieJar, log zerolog.Logger) (*Client, error) {
	c, err := NewClient(baseURL, timeout, log)
	if err != nil {
		return nil, err
	}
	c.http.Jar = jar
	return c, nil
}

type userEnvelope struct {
	User domain.Identity `json:"user"`
}

type errorEnvelope struct {
	Error  string               `json:"error"`
	Status domain.AccountStatus `json:"status,omitempty"`
}

// Login authenticates and lets the transport capture the session cookie.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "login", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var env userEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, &domain.NetworkError{Op: "login", Err: err}
		}
		return &env.User, nil
	case http.StatusUnauthorized:
		return nil, domain.ErrInvalidCredentials
	case http.StatusForbidden:
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if env.Status != "" {
			return nil, &domain.AccountUnapprovedError{Status: env.Status}
		}
		return nil, domain.ErrInvalidCredentials
	default:
		return nil, c.unexpected("login", resp)
	}
}

// Logout asks the server to invalidate the session. Any HTTP response,
// including an error status, counts as success: the server-held session is
// gone or was never there. Only a transport failure is reported.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		return &domain.NetworkError{Op: "logout", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Me returns the authoritative identity for the current session cookie.
func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, &domain.NetworkError{Op: "me", Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var env userEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return nil, &domain.NetworkError{Op: "me", Err: err}
		}
		return &env.User, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrUnauthenticated
	default:
		return nil, c.unexpected("me", resp)
	}
}

// List fetches one page of a resource collection.
func (c *Client) List(ctx context.Context, resource domain.ResourceType, query domain.ListQuery) (*domain.ListPage, error) {
	query = query.Normalize()
	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	if query.Search != "" {
		params.Set("q", query.Search)
	}
	for k, v := range query.Filters {
		params.Set(k, v)
	}

	resp, err := c.do(ctx, http.MethodGet, "/"+string(resource), params, nil)
	if err != nil {
		return nil, &domain.NetworkError{Op: "list " + string(resource), Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var page domain.ListPage
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return nil, &domain.NetworkError{Op: "list " + string(resource), Err: err}
		}
		if page.Items == nil {
			page.Items = []domain.Entity{}
		}
		return &page, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrUnauthenticated
	default:
		return nil, c.unexpected("list "+string(resource), resp)
	}
}

// Create posts a new entity and returns the server-confirmed one.
func (c *Client) Create(ctx context.Context, resource domain.ResourceType, entity domain.Entity) (domain.Entity, error) {
	return c.mutate(ctx, resource, http.MethodPost, "/"+string(resource), entity)
}

// Update replaces the entity with the given id.
func (c *Client) Update(ctx context.Context, resource domain.ResourceType, id string, entity domain.Entity) (domain.Entity, error) {
	return c.mutate(ctx, resource, http.MethodPut, "/"+string(resource)+"/"+url.PathEscape(id), entity)
}

// Delete removes the entity with the given id.
func (c *Client) Delete(ctx context.Context, resource domain.ResourceType, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/"+string(resource)+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return &domain.NetworkError{Op: "delete " + string(resource), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return c.classifyMutation(resource, resp)
}

func (c *Client) mutate(ctx context.Context, resource domain.ResourceType, method, path string, entity domain.Entity) (domain.Entity, error) {
	resp, err := c.do(ctx, method, path, nil, entity)
	if err != nil {
		return nil, &domain.NetworkError{Op: strings.ToLower(method) + " " + string(resource), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var confirmed domain.Entity
		if err := json.NewDecoder(resp.Body).Decode(&confirmed); err != nil {
			return nil, &domain.NetworkError{Op: strings.ToLower(method) + " " + string(resource), Err: err}
		}
		return confirmed, nil
	}
	return nil, c.classifyMutation(resource, resp)
}

// classifyMutation maps a non-2xx mutation response onto the error taxonomy:
// auth failures invalidate the session, other 4xx are conflicts carrying the
// server's reason, 5xx are transient.
func (c *Client) classifyMutation(resource domain.ResourceType, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthenticated
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		reason := env.Error
		if reason == "" {
			reason = resp.Status
		}
		return &domain.MutationConflictError{Resource: resource, Reason: reason}
	default:
		return &domain.NetworkError{
			Op:  "mutate " + string(resource),
			Err: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any) (*http.Response, error) {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), payload)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return c.http.Do(req)
}

func (c *Client) unexpected(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	c.log.Error().
		Str("op", op).
		Int("status", resp.StatusCode).
		Str("body", string(data)).
		Msg("unexpected API response")
	return &domain.NetworkError{Op: op, Err: fmt.Errorf("unexpected status %s", resp.Status)}
}
