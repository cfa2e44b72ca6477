// Package users implements the combined signup/login flow: given
// credentials it decides whether the caller is registering or logging in,
// verifies or hashes the password and issues an access token.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/directory"
)

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// TokenIssuer issues access tokens bound to an email.
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// Credentials as submitted by the caller. Password is plaintext and must not
// outlive the request.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// Result of a successful Authenticate. Created reports a signup; UserID is
// the directory id of the user.
type Result struct {
	UserID  string
	Token   string
	Created bool
}

type Service struct {
	directory directory.Directory
	hasher    Hasher
	tokens    TokenIssuer
	logger    logging.Logger
	emails    *keyedMutex
}

func NewService(d directory.Directory, h Hasher, t TokenIssuer, l logging.Logger) *Service {
	return &Service{
		directory: d,
		hasher:    h,
		tokens:    t,
		logger:    l.With("module", "users"),
		emails:    newKeyedMutex(),
	}
}

// Authenticate logs the caller in when the directory knows the email and
// signs them up otherwise. Errors match (errors.Is) one of
// common.ErrMissingCredentials, common.ErrorUnauthorized,
// common.ErrAlreadyExists, common.ErrUpstream, common.ErrHashing or
// common.ErrorInternal.
//
// Requests for the same email are serialized inside this process, so two
// concurrent signups cannot both miss the lookup. Other gateway replicas
// are not covered; that needs a directory that rejects duplicates.
func (s *Service) Authenticate(ctx context.Context, c Credentials) (*Result, error) {
	email := common.NormalizeEmail(c.Email)
	if email == "" || c.Password == "" {
		return nil, common.ErrMissingCredentials
	}

	unlock := s.emails.Lock(email)
	defer unlock()

	user, err := s.findUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if user != nil {
		return s.login(ctx, user, email, c.Password)
	}
	return s.signup(ctx, c.Name, email, c.Password)
}

// findUser returns the first record whose normalized email equals email,
// or nil when there is none.
func (s *Service) findUser(ctx context.Context, email string) (*directory.UserRecord, error) {
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUpstream, err)
	}
	for i := range users {
		if common.NormalizeEmail(users[i].Email) == email {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (s *Service) login(ctx context.Context, user *directory.UserRecord, email, password string) (*Result, error) {
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrHashing, err)
	}
	if !ok {
		s.logger.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "login accepted", "user_id", user.ID)
	return &Result{UserID: user.ID, Token: token}, nil
}

func (s *Service) signup(ctx context.Context, name, email, password string) (*Result, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrHashing, err)
	}

	user, err := s.directory.CreateUser(ctx, directory.NewUser{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrUpstream, err)
	}

	token, err := s.tokens.Issue(email)
	if err != nil {
		return nil, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return &Result{UserID: user.ID, Token: token, Created: true}, nil
}
