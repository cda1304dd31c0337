// Package session keeps a bearer token on the client side: it persists the
// token, checks it without the signing secret, refreshes it ahead of expiry
// and tells subscribers when the session changes.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/taskhub/internal/apiclient"
	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/pkg/util"
)

const defaultRefreshWindow = 5 * time.Minute

var (
	// ErrNoSession means no token is stored.
	ErrNoSession = errors.New("not logged in")
	// ErrSessionExpired means the auth service rejected the refresh and the session was cleared.
	ErrSessionExpired = errors.New("session expired, log in again")
)

// EventType names a session change.
type EventType string

const (
	EventLogin          EventType = "login"
	EventTokenRefreshed EventType = "token_refreshed"
	EventLogout         EventType = "logout"
)

// Event is delivered to subscribers after the change has been applied.
type Event struct {
	Type  EventType
	Token string
}

// Remote is the part of the auth service the session needs.
type Remote interface {
	Refresh(ctx context.Context, token string) (auth.TokenResponse, error)
	Logout(ctx context.Context, token string) error
}

// Options configures a Client. Store and Cookies are optional.
type Options struct {
	Remote        Remote
	Store         Store
	Cookies       *CookieMirror
	RefreshWindow time.Duration
	Clock         util.Clock
	Logger        *slog.Logger
}

// Client holds the current token in memory and mirrors it to the store and cookies.
type Client struct {
	remote  Remote
	store   Store
	cookies *CookieMirror
	window  time.Duration
	now     util.Clock
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
	user  *auth.UserView

	group singleflight.Group

	subsMu sync.Mutex
	subs   map[int]func(Event)
	nextID int
}

// New builds a Client and loads any persisted session.
func New(opts Options) (*Client, error) {
	c := &Client{
		remote:  opts.Remote,
		store:   opts.Store,
		cookies: opts.Cookies,
		window:  opts.RefreshWindow,
		now:     opts.Clock,
		logger:  opts.Logger,
		subs:    make(map[int]func(Event)),
	}
	if c.window <= 0 {
		c.window = defaultRefreshWindow
	}
	if c.now == nil {
		c.now = util.NowUTC
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "session")

	if c.store != nil {
		state, err := c.store.Load()
		if err != nil {
			return nil, err
		}
		c.token = state.Token
		c.user = state.User
		if c.token != "" && c.cookies != nil {
			c.cookies.Set(c.token)
		}
	}
	return c, nil
}

// Token returns the stored token, if any.
func (c *Client) Token() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.token != ""
}

// User returns the stored profile, if any.
func (c *Client) User() *auth.UserView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	user := *c.user
	return &user
}

// Status inspects the stored token without verifying its signature.
func (c *Client) Status() AdvisoryStatus {
	token, _ := c.Token()
	return Inspect(token, c.now())
}

// IsAuthenticated is an advisory check: the stored token decodes, carries an
// email and has not yet expired. It does not prove the token is genuine.
func (c *Client) IsAuthenticated() bool {
	return c.Status().Valid
}

// SaveToken stores a freshly obtained token and announces a login.
func (c *Client) SaveToken(token string, user *auth.UserView) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := c.replace(token, user, true); err != nil {
		return err
	}
	c.broadcast(Event{Type: EventLogin, Token: token})
	return nil
}

// MaybeRefresh refreshes the token when less than the refresh window remains
// (or it has already expired) and returns the token to use. Concurrent calls
// share a single request. A 401 from the auth service ends the session.
func (c *Client) MaybeRefresh(ctx context.Context) (string, error) {
	current, ok := c.Token()
	if !ok {
		return "", ErrNoSession
	}
	status := Inspect(current, c.now())
	if status.Valid && status.ExpiresAt.Sub(c.now()) >= c.window {
		return current, nil
	}

	v, err, _ := c.group.Do("refresh", func() (any, error) {
		latest, ok := c.Token()
		if !ok {
			return "", ErrNoSession
		}
		if latest != current {
			return latest, nil
		}
		resp, err := c.remote.Refresh(ctx, latest)
		if err != nil {
			if apiclient.IsUnauthorized(err) {
				c.logger.Info("refresh rejected, clearing session")
				if clearErr := c.clear(); clearErr != nil {
					c.logger.Warn("clear session failed", "error", clearErr)
				}
				return "", ErrSessionExpired
			}
			return "", err
		}
		if err := c.replace(resp.Token, nil, false); err != nil {
			return "", err
		}
		c.broadcast(Event{Type: EventTokenRefreshed, Token: resp.Token})
		return resp.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Logout tells the auth service (best effort) and then always clears every
// local copy of the token. A remote failure is logged, not returned.
func (c *Client) Logout(ctx context.Context) error {
	if token, ok := c.Token(); ok && c.remote != nil {
		if err := c.remote.Logout(ctx, token); err != nil {
			c.logger.Warn("remote logout failed", "error", err)
		}
	}
	return c.clear()
}

// Subscribe registers fn for session events and returns its cancel func.
// Callbacks run synchronously on the goroutine that changed the session.
func (c *Client) Subscribe(fn func(Event)) func() {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		delete(c.subs, id)
	}
}

// replace swaps the token everywhere. When setUser is false the stored
// profile is kept.
func (c *Client) replace(token string, user *auth.UserView, setUser bool) error {
	c.mu.Lock()
	c.token = token
	if setUser {
		c.user = user
	}
	state := State{Token: c.token, User: c.user}
	c.mu.Unlock()

	if c.cookies != nil {
		c.cookies.Set(token)
	}
	if c.store != nil {
		return c.store.Save(state)
	}
	return nil
}

func (c *Client) clear() error {
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.mu.Unlock()

	if c.cookies != nil {
		c.cookies.Clear()
	}
	var err error
	if c.store != nil {
		err = c.store.Clear()
	}
	c.broadcast(Event{Type: EventLogout})
	return err
}

func (c *Client) broadcast(event Event) {
	c.subsMu.Lock()
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subsMu.Unlock()
	for _, fn := range subs {
		fn(event)
	}
}
