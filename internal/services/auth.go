// Email/password accounts against an Identity-Toolkit-compatible REST backend
//
// Endpoints based on https://cloud.google.com/identity-platform/docs/use-rest-api
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/reminis/internal/repositories"
	"github.com/desertthunder/reminis/internal/shared"
	"golang.org/x/oauth2"
)

// SessionKey is the key-value key holding the signed-in session.
const SessionKey = "@memory_session"

// Session is a signed-in account.
type Session struct {
	UserID string        `json:"uid"`
	Email  string        `json:"email"`
	Token  *oauth2.Token `json:"token"`
}

// Valid reports whether the session's token is present and unexpired.
func (s *Session) Valid() bool {
	return s != nil && s.Token.Valid()
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// IdentityResponse is the body returned by signUp and signInWithPassword.
type IdentityResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

type identityError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var credentialMessages = map[string]bool{
	"EMAIL_EXISTS":              true,
	"EMAIL_NOT_FOUND":           true,
	"INVALID_PASSWORD":          true,
	"INVALID_EMAIL":             true,
	"INVALID_LOGIN_CREDENTIALS": true,
	"USER_DISABLED":             true,
}

// AuthOpts configures an [AuthService].
type AuthOpts struct {
	APIKey   string
	Identity *APIClient
	Token    *APIClient
	KV       repositories.KeyValueStore
	Now      func() time.Time
}

// AuthService signs users up and in and keeps the session in a key-value store.
type AuthService struct {
	apiKey   string
	identity *APIClient
	token    *APIClient
	kv       repositories.KeyValueStore
	now      func() time.Time
}

func NewAuthService(opts AuthOpts) *AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthService{
		apiKey:   opts.APIKey,
		identity: opts.Identity,
		token:    opts.Token,
		kv:       opts.KV,
		now:      opts.Now,
	}
}

// SignUp creates an account and stores its session.
func (a *AuthService) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return a.authenticate(ctx, "/v1/accounts:signUp", email, password)
}

// SignIn signs in with email and password and stores the session.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return a.authenticate(ctx, "/v1/accounts:signInWithPassword", email, password)
}

func (a *AuthService) authenticate(ctx context.Context, path, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrMissingCredentials)
	}

	body := credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}

	var resp IdentityResponse
	if err := a.identity.PostJSON(ctx, path, a.keyQuery(), body, &resp); err != nil {
		return nil, identityErr(err)
	}

	session := &Session{
		UserID: resp.LocalID,
		Email:  resp.Email,
		Token: &oauth2.Token{
			AccessToken:  resp.IDToken,
			TokenType:    "Bearer",
			RefreshToken: resp.RefreshToken,
			Expiry:       a.expiry(resp.ExpiresIn),
		},
	}

	if err := a.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Current returns the stored session or [shared.ErrNotAuthenticated].
func (a *AuthService) Current(ctx context.Context) (*Session, error) {
	var session Session
	if err := repositories.GetJSON(ctx, a.kv, SessionKey, &session); err != nil {
		if repositories.IsNotFound(err) {
			return nil, shared.ErrNotAuthenticated
		}
		return nil, err
	}
	if session.Token == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return &session, nil
}

// TokenSource returns a source that reuses the session token until it expires, then refreshes it.
func (a *AuthService) TokenSource(ctx context.Context, session *Session) oauth2.TokenSource {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.token.HTTPClient())
	return a.oauthConfig().TokenSource(ctx, session.Token)
}

// Refresh makes sure the stored session holds a valid token, refreshing and persisting it when needed.
func (a *AuthService) Refresh(ctx context.Context) (*Session, error) {
	session, err := a.Current(ctx)
	if err != nil {
		return nil, err
	}

	if session.Token.RefreshToken == "" && !session.Valid() {
		return nil, shared.ErrNoRefreshToken
	}

	token, err := a.TokenSource(ctx, session).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if token.AccessToken != session.Token.AccessToken {
		session.Token = token
		if err := a.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// SignOut forgets the stored session. Signing out without a session is not an error.
func (a *AuthService) SignOut(ctx context.Context) error {
	if err := a.kv.RemoveItem(ctx, SessionKey); err != nil && !repositories.IsNotFound(err) {
		return err
	}
	return nil
}

func (a *AuthService) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  a.token.BaseURL() + "/v1/token?" + a.keyQuery().Encode(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (a *AuthService) keyQuery() url.Values {
	return url.Values{"key": {a.apiKey}}
}

func (a *AuthService) expiry(expiresIn string) time.Time {
	seconds, err := strconv.Atoi(expiresIn)
	if err != nil || seconds <= 0 {
		return time.Time{}
	}
	return a.now().Add(time.Duration(seconds) * time.Second)
}

func (a *AuthService) save(ctx context.Context, session *Session) error {
	if err := repositories.SetJSON(ctx, a.kv, SessionKey, session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// identityErr converts a backend error body such as {"error":{"message":"EMAIL_EXISTS"}} into a sentinel.
func identityErr(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	var body identityError
	if json.Unmarshal(apiErr.Body, &body) != nil || body.Error.Message == "" {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	// Messages may carry a detail suffix: "WEAK_PASSWORD : Password should be at least 6 characters"
	code, _, _ := strings.Cut(body.Error.Message, " ")
	if credentialMessages[code] {
		return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, body.Error.Message)
	}
	return fmt.Errorf("%w: %s", shared.ErrAuthFailed, body.Error.Message)
}
