package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/authgate/internal/common"
)

// LoginResult is the server's answer to /login. UserID is empty when the
// call created a new account.
type LoginResult struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

// Registered reports whether the call created the account.
func (r *LoginResult) Registered() bool {
	return r.UserID == ""
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Login signs in, or signs up when the email is unknown to the server.
func (c *HTTPClient) Login(ctx context.Context, name, email string, password []byte) (*LoginResult, error) {
	body, err := json.Marshal(struct {
		Name     string `json:"name,omitempty"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{name, email, string(password)})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out LoginResult
	if err := c.do(req, func(b []byte) error { return json.Unmarshal(b, &out) }); err != nil {
		return nil, err
	}
	return &out, nil
}

// Contacts fetches the protected contacts payload.
func (c *HTTPClient) Contacts(ctx context.Context, token string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/getContacts", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	var out json.RawMessage
	if err := c.do(req, func(b []byte) error {
		out = json.RawMessage(b)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks the server answers /hello.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/hello", nil)
	if err != nil {
		return err
	}
	return c.do(req, func([]byte) error { return nil })
}

func (c *HTTPClient) do(req *http.Request, decode func([]byte) error) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return decode(b)
	case http.StatusNotFound:
		return ErrMissingFields
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusConflict:
		return ErrConflict
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, serverError(b))
	}
}

func serverError(b []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}
