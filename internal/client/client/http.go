package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/client/models"
	"github.com/dmitrijs2005/crmconsole/internal/logging"
	"golang.org/x/oauth2"
)

const maxErrorBody = 1 << 20

// HTTPClient implements Gateway over the backend's REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	// anon carries no bearer token; used for the password grant.
	anon  *http.Client
	oauth *oauth2.Config
	log   logging.Logger
}

var _ Gateway = (*HTTPClient)(nil)

type Option func(*httpOptions)

type httpOptions struct {
	transport http.RoundTripper
	timeout   time.Duration
	log       logging.Logger
}

// WithTransport replaces http.DefaultTransport as the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *httpOptions) { o.transport = rt }
}

// WithTimeout caps every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(o *httpOptions) { o.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *httpOptions) { o.log = l }
}

// NewHTTPClient returns a client for the API rooted at baseURL, e.g.
// "http://127.0.0.1:8080/api". token is consulted on every request.
func NewHTTPClient(baseURL string, token TokenFunc, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url: %q", baseURL)
	}

	o := httpOptions{transport: http.DefaultTransport, log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	base := strings.TrimRight(u.String(), "/")

	return &HTTPClient{
		baseURL: base,
		http: &http.Client{
			Transport: &authTransport{base: o.transport, token: token},
			Timeout:   o.timeout,
		},
		anon: &http.Client{
			Transport: &authTransport{base: o.transport},
			Timeout:   o.timeout,
		},
		oauth: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  base + "/auth/login",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		log: o.log,
	}, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if resp.Email == "" {
		resp.Email = req.Email
	}
	return &resp, nil
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, email, code string) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/verify-email", verifyRequest{Email: email, Code: code}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "response missing access token"}
	}
	return &resp, nil
}

// ResendOTP uses the verification endpoint with an empty code, which the
// backend treats as a request to issue a new one.
func (c *HTTPClient) ResendOTP(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/verify-email", verifyRequest{Email: email}, nil)
}

// Login performs the OAuth2 resource owner password grant against
// /auth/login. The user record, when present, rides along in the token
// response.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.anon)

	tok, err := c.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			code := http.StatusBadGateway
			if re.Response != nil {
				code = re.Response.StatusCode
			}
			return nil, &APIError{StatusCode: code, Message: extractMessage(re.Body)}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp := &AuthResponse{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}

	if raw := tok.Extra("user"); raw != nil {
		b, err := json.Marshal(raw)
		if err == nil {
			var u models.User
			if err := json.Unmarshal(b, &u); err == nil {
				resp.User = &u
			}
		}
	}

	return resp, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) AdminDashboard(ctx context.Context) (*models.AdminDashboard, error) {
	var d models.AdminDashboard
	if err := c.doJSON(ctx, http.MethodGet, "/superuser/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, u models.NewAccount) (*models.AccountUser, error) {
	var out models.AccountUser
	if err := c.doJSON(ctx, http.MethodPost, "/superuser/users", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, u models.AccountUpdate) (*models.AccountUser, error) {
	var out models.AccountUser
	if err := c.doJSON(ctx, http.MethodPut, "/superuser/users/"+strconv.FormatInt(id, 10), u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/superuser/users/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) ToggleUserActive(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPatch, "/superuser/users/"+strconv.FormatInt(id, 10)+"/toggle-active", nil, nil)
}

func (c *HTTPClient) LatestCustomers(ctx context.Context, limit int) (*models.CustomerPage, error) {
	if limit <= 0 {
		limit = 50
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}

	var p models.CustomerPage
	if err := c.doJSON(ctx, http.MethodGet, "/crm/customers/latest?"+q.Encode(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) Customers(ctx context.Context, f models.CustomerFilter) (*models.CustomerPage, error) {
	f = f.Normalize()
	q := url.Values{}
	for k, v := range map[string]string{"search": f.Search, "status": f.Status, "platform": f.Platform, "date": f.Date} {
		if v != "" {
			q.Set(k, v)
		}
	}

	path := "/crm/customers"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var p models.CustomerPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CreateCustomer(ctx context.Context, in models.CustomerInput) (*models.Customer, error) {
	return c.sendCustomer(ctx, http.MethodPost, "/crm/customers", "status", in)
}

// UpdateCustomer sends the status as customer_status; the edit endpoint
// does not accept the plain field name.
func (c *HTTPClient) UpdateCustomer(ctx context.Context, id int64, in models.CustomerInput) (*models.Customer, error) {
	return c.sendCustomer(ctx, http.MethodPatch, "/crm/customers/"+strconv.FormatInt(id, 10), "customer_status", in)
}

func (c *HTTPClient) DeleteCustomer(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/crm/customers/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) CRMStats(ctx context.Context) (*models.CRMStats, error) {
	var s models.CRMStats
	if err := c.doJSON(ctx, http.MethodGet, "/crm/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *HTTPClient) sendCustomer(ctx context.Context, method, path, statusField string, in models.CustomerInput) (*models.Customer, error) {
	in = in.Normalize()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"full_name", in.FullName},
		{"username", in.Username()},
		{"phone_number", in.PhoneNumber},
		{"platform", in.Platform},
		{statusField, in.Status},
		{"assistant_name", in.AssistantName},
		{"notes", in.Notes},
		{"conversation_language", in.ConversationLanguage},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	var out models.Customer
	if err := c.do(ctx, method, path, &buf, w.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Message: extractMessage(b)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
