// Package client provides an HTTP client wrapper for calling services
// that authenticate with short-lived bearer tokens. When a request
// comes back 401 the client refreshes the session once and retries;
// concurrent callers hitting the same expired token share a single
// refresh instead of stampeding the auth endpoint.
package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoSession is returned when the session source cannot produce a
// usable session.
var ErrNoSession = errors.New("client: no session available")

// Session is a bearer token and the instant it stops being valid. A
// zero Expiry means the token does not expire client-side.
type Session struct {
	Token  string
	Expiry time.Time
}

// Expired reports whether the session should be considered stale at t.
func (s Session) Expired(t time.Time) bool {
	return s.Token == "" || (!s.Expiry.IsZero() && !t.Before(s.Expiry))
}

// SessionSource supplies bearer sessions. CurrentSession may return a
// cached value; RefreshSession must obtain a fresh one.
type SessionSource interface {
	CurrentSession(ctx context.Context) (Session, error)
	RefreshSession(ctx context.Context) (Session, error)
}

// AuthClient decorates an http.Client with bearer authentication and
// transparent session refresh.
type AuthClient struct {
	HTTP   *http.Client
	Source SessionSource

	group singleflight.Group

	mu      sync.Mutex
	session Session
}

// NewAuthClient builds an AuthClient around src. A nil httpClient
// falls back to http.DefaultClient.
func NewAuthClient(httpClient *http.Client, src SessionSource) *AuthClient {
	if src == nil {
		panic("nil SessionSource passed to NewAuthClient")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AuthClient{HTTP: httpClient, Source: src}
}

// Do sends req with a bearer token attached. On a 401 response it
// refreshes the session and retries the request at most once. Retrying
// needs the body to be replayable, so requests with a body must carry
// GetBody (http.NewRequest sets it for the common readers).
func (c *AuthClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	sess, err := c.currentSession(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, sess.Token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// Cannot replay the body; hand the 401 back to the caller.
		return resp, nil
	}
	resp.Body.Close()

	sess, err = c.refresh(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	return c.send(req, sess.Token)
}

func (c *AuthClient) send(req *http.Request, token string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}
	out.Header.Set("Authorization", "Bearer "+token)
	return c.HTTP.Do(out)
}

func (c *AuthClient) currentSession(ctx context.Context) (Session, error) {
	c.mu.Lock()
	cached := c.session
	c.mu.Unlock()
	if !cached.Expired(time.Now()) {
		return cached, nil
	}

	sess, err := c.Source.CurrentSession(ctx)
	if err != nil || sess.Token == "" {
		// No usable cached source session: go through refresh.
		return c.refresh(ctx, cached.Token)
	}
	c.store(sess)
	return sess, nil
}

// refresh obtains a new session, deduplicating concurrent callers.
// stale is the token the caller saw fail; if another goroutine already
// replaced it the stored session is returned without a second refresh.
func (c *AuthClient) refresh(ctx context.Context, stale string) (Session, error) {
	v, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		c.mu.Lock()
		held := c.session
		c.mu.Unlock()
		if held.Token != "" && held.Token != stale && !held.Expired(time.Now()) {
			return held, nil
		}
		sess, err := c.Source.RefreshSession(ctx)
		if err != nil {
			return Session{}, err
		}
		if sess.Token == "" {
			return Session{}, ErrNoSession
		}
		c.store(sess)
		return sess, nil
	})
	if err != nil {
		return Session{}, err
	}
	return v.(Session), nil
}

func (c *AuthClient) store(sess Session) {
	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()
}
