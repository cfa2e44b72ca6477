package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SheetyClient talks to a spreadsheet-backed REST API exposing /users and
// /contacts sheets. Every request carries the directory bearer token.
type SheetyClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewSheetyClient(baseURL, token string, httpClient *http.Client) *SheetyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SheetyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// sheetyID accepts the row id either as a JSON number or as a string.
type sheetyID string

func (id *sheetyID) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*id = sheetyID(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("unexpected id %s", string(b))
	}
	*id = sheetyID(s)
	return nil
}

// sheetyUser is the row layout of the users sheet; the password column
// holds the bcrypt hash.
type sheetyUser struct {
	ID       sheetyID `json:"id,omitempty"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
}

func (u sheetyUser) record() UserRecord {
	return UserRecord{ID: string(u.ID), Name: u.Name, Email: u.Email, PasswordHash: u.Password}
}

func (c *SheetyClient) ListUsers(ctx context.Context) ([]UserRecord, error) {
	var body struct {
		Users []sheetyUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users", nil, &body); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]UserRecord, 0, len(body.Users))
	for _, u := range body.Users {
		users = append(users, u.record())
	}
	return users, nil
}

func (c *SheetyClient) CreateUser(ctx context.Context, u NewUser) (*UserRecord, error) {
	in := map[string]sheetyUser{
		"user": {Name: u.Name, Email: u.Email, Password: u.PasswordHash},
	}
	var out struct {
		User sheetyUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/users", in, &out); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	rec := out.User.record()
	if rec.Email == "" {
		rec.Name, rec.Email, rec.PasswordHash = u.Name, u.Email, u.PasswordHash
	}
	return &rec, nil
}

func (c *SheetyClient) Contacts(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/contacts", nil, &raw); err != nil {
		return nil, fmt.Errorf("get contacts: %w", err)
	}
	return raw, nil
}

func (c *SheetyClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s; body: %s", resp.Status, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
