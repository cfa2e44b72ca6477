package rest

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/directory"
	"github.com/dmitrijs2005/authgate/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsers struct {
	res *users.Result
	err error
	got users.Credentials
}

func (f *fakeUsers) Authenticate(ctx context.Context, c users.Credentials) (*users.Result, error) {
	f.got = c
	return f.res, f.err
}

type fakeVerifier struct {
	claims *auth.Claims
	err    error
	got    string
}

func (f *fakeVerifier) Verify(token string) (*auth.Claims, error) {
	f.got = token
	if token == "" {
		return nil, common.ErrMissingToken
	}
	return f.claims, f.err
}

type fakeContacts struct {
	payload json.RawMessage
	err     error
}

func (f *fakeContacts) Contacts(ctx context.Context) (json.RawMessage, error) {
	return f.payload, f.err
}

func newTestServer(us Authenticator, tv TokenVerifier, cs directory.ContactsSource) http.Handler {
	return NewServer(":0", logging.Nop{}, us, tv, cs, []string{"*"}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// ---- /login ----

func TestLogin_Responses(t *testing.T) {
	tests := []struct {
		name       string
		users      *fakeUsers
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "signup returns token only",
			users:      &fakeUsers{res: &users.Result{UserID: "new", Token: "tok", Created: true}},
			body:       `{"email":"x@y.com","password":"pw"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"token":"tok"}`,
		},
		{
			name:       "login returns user id and token",
			users:      &fakeUsers{res: &users.Result{UserID: "u-1", Token: "tok"}},
			body:       `{"email":"x@y.com","password":"pw"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"userId":"u-1","token":"tok"}`,
		},
		{
			name:       "login keeps user id field when empty",
			users:      &fakeUsers{res: &users.Result{Token: "tok"}},
			body:       `{"email":"x@y.com","password":"pw"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"userId":"","token":"tok"}`,
		},
		{
			name:       "wrong password",
			users:      &fakeUsers{err: common.ErrorUnauthorized},
			body:       `{"email":"x@y.com","password":"bad"}`,
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"invalid email or password"}`,
		},
		{
			name:       "duplicate signup",
			users:      &fakeUsers{err: common.ErrAlreadyExists},
			body:       `{"email":"x@y.com","password":"pw"}`,
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"user already exists"}`,
		},
		{
			name:       "directory down",
			users:      &fakeUsers{err: common.ErrUpstream},
			body:       `{"email":"x@y.com","password":"pw"}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal error"}`,
		},
		{
			name:       "hashing error",
			users:      &fakeUsers{err: common.ErrHashing},
			body:       `{"email":"x@y.com","password":"pw"}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(tt.users, &fakeVerifier{}, &fakeContacts{})
			rec := do(t, h, http.MethodPost, "/login", tt.body, map[string]string{"Content-Type": "application/json"})

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestLogin_PassesCredentials(t *testing.T) {
	fu := &fakeUsers{res: &users.Result{Token: "tok", Created: true}}
	h := newTestServer(fu, &fakeVerifier{}, &fakeContacts{})

	do(t, h, http.MethodPost, "/login", `{"name":"Ann","email":" A@B.com ","password":"pw"}`, nil)
	assert.Equal(t, users.Credentials{Name: "Ann", Email: " A@B.com ", Password: "pw"}, fu.got)
}

func TestLogin_MissingFieldsIsClientError(t *testing.T) {
	fu := &fakeUsers{err: common.ErrMissingCredentials}
	h := newTestServer(fu, &fakeVerifier{}, &fakeContacts{})

	for _, body := range []string{`{"email":"x@y.com"}`, `{"password":"pw"}`, `{}`, ``, `not json`} {
		rec := do(t, h, http.MethodPost, "/login", body, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "body %q", body)
	}
}

func TestLogin_AnyMethod(t *testing.T) {
	fu := &fakeUsers{res: &users.Result{Token: "tok", Created: true}}
	h := newTestServer(fu, &fakeVerifier{}, &fakeContacts{})

	rec := do(t, h, http.MethodPut, "/login", `{"email":"x@y.com","password":"pw"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---- /getContacts ----

func TestGetContacts_Guard(t *testing.T) {
	payload := json.RawMessage(`{"contacts":[{"id":2,"name":"Bob"}]}`)

	tests := []struct {
		name       string
		header     map[string]string
		verifier   *fakeVerifier
		wantStatus int
		wantToken  string
	}{
		{
			name:       "no header",
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "other scheme",
			header:     map[string]string{"Authorization": "Basic abc"},
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer without token",
			header:     map[string]string{"Authorization": "Bearer "},
			verifier:   &fakeVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			header:     map[string]string{"Authorization": "Bearer garbage"},
			verifier:   &fakeVerifier{err: common.ErrInvalidToken},
			wantStatus: http.StatusForbidden,
			wantToken:  "garbage",
		},
		{
			name:       "valid token",
			header:     map[string]string{"Authorization": "bearer good"},
			verifier:   &fakeVerifier{claims: &auth.Claims{Email: "a@b.com"}},
			wantStatus: http.StatusOK,
			wantToken:  "good",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&fakeUsers{}, tt.verifier, &fakeContacts{payload: payload})
			rec := do(t, h, http.MethodGet, "/getContacts", "", tt.header)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantToken, tt.verifier.got)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, string(payload), rec.Body.String())
			}
		})
	}
}

func TestGetContacts_UpstreamError(t *testing.T) {
	h := newTestServer(&fakeUsers{}, &fakeVerifier{claims: &auth.Claims{}}, &fakeContacts{err: errBoom{}})
	rec := do(t, h, http.MethodGet, "/getContacts", "", map[string]string{"Authorization": "Bearer ok"})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAccessTokenMiddleware_AttachesClaims(t *testing.T) {
	s := NewServer(":0", logging.Nop{}, &fakeUsers{}, &fakeVerifier{claims: &auth.Claims{Email: "a@b.com"}}, &fakeContacts{}, nil)

	var got *auth.Claims
	h := s.accessTokenMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "a@b.com", got.Email)

	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)
}

// ---- utility routes ----

func TestHello(t *testing.T) {
	rec := do(t, newTestServer(&fakeUsers{}, &fakeVerifier{}, &fakeContacts{}), http.MethodGet, "/hello", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", rec.Body.String())
}

func TestGetTokenSecret(t *testing.T) {
	h := newTestServer(&fakeUsers{}, &fakeVerifier{}, &fakeContacts{})

	a := do(t, h, http.MethodGet, "/getTokenSecret", "", nil)
	b := do(t, h, http.MethodGet, "/getTokenSecret", "", nil)

	require.Equal(t, http.StatusOK, a.Code)
	assert.Len(t, a.Body.String(), common.TokenSecretSize*2)
	_, err := hex.DecodeString(a.Body.String())
	assert.NoError(t, err)
	assert.NotEqual(t, a.Body.String(), b.Body.String())
}

func TestRequestID(t *testing.T) {
	h := newTestServer(&fakeUsers{}, &fakeVerifier{}, &fakeContacts{})

	rec := do(t, h, http.MethodGet, "/hello", "", map[string]string{"X-Request-Id": "abc"})
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))

	rec = do(t, h, http.MethodGet, "/hello", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestCORS(t *testing.T) {
	h := newTestServer(&fakeUsers{}, &fakeVerifier{}, &fakeContacts{})

	rec := do(t, h, http.MethodGet, "/hello", "", map[string]string{"Origin": "http://example.com"})
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

// ---- end to end ----

func TestScenario_SignupLoginContacts(t *testing.T) {
	hasher, err := auth.NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	issuer, err := auth.NewTokenIssuer([]byte("secret"), auth.DefaultAccessTokenValidity)
	require.NoError(t, err)

	dir := directory.NewMemoryDirectory(json.RawMessage(`{"contacts":[{"name":"Bob"}]}`))
	svc := users.NewService(dir, hasher, issuer, logging.Nop{})
	h := newTestServer(svc, issuer, dir)

	body := `{"email":"x@y.com","password":"pw"}`

	rec := do(t, h, http.MethodPost, "/login", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var signup map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup["token"])
	assert.NotContains(t, signup, "userId")

	rec = do(t, h, http.MethodPost, "/login", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.NotEmpty(t, login["userId"])
	assert.NotEmpty(t, login["token"])

	rec = do(t, h, http.MethodPost, "/login", `{"email":"x@y.com","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/getContacts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/getContacts", "", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, http.MethodGet, "/getContacts", "", map[string]string{"Authorization": "Bearer " + login["token"]})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contacts":[{"name":"Bob"}]}`, rec.Body.String())
}
