package session

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

const (
	cookieName   = "auth_token"
	cookieMaxAge = 7 * 24 * time.Hour
)

// CookieMirror mirrors the token as an auth_token cookie for each service URL.
type CookieMirror struct {
	jar  *cookiejar.Jar
	urls []*url.URL
}

// NewCookieMirror builds a mirror over a fresh jar for the given base URLs.
func NewCookieMirror(rawURLs ...string) (*CookieMirror, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	m := &CookieMirror{jar: jar}
	for _, raw := range rawURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse cookie url %q: %w", raw, err)
		}
		m.urls = append(m.urls, &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"})
	}
	return m, nil
}

// Jar exposes the underlying jar so HTTP clients send the mirrored cookie.
func (m *CookieMirror) Jar() http.CookieJar { return m.jar }

// Set stores token for every URL with a seven day expiry.
func (m *CookieMirror) Set(token string) {
	for _, u := range m.urls {
		m.jar.SetCookies(u, []*http.Cookie{{
			Name:     cookieName,
			Value:    token,
			Path:     "/",
			MaxAge:   int(cookieMaxAge / time.Second),
			SameSite: http.SameSiteStrictMode,
		}})
	}
}

// Clear expires the cookie everywhere.
func (m *CookieMirror) Clear() {
	for _, u := range m.urls {
		m.jar.SetCookies(u, []*http.Cookie{{Name: cookieName, Value: "", Path: "/", MaxAge: -1}})
	}
}

// Token returns the mirrored value for the first URL, if any.
func (m *CookieMirror) Token() (string, bool) {
	if len(m.urls) == 0 {
		return "", false
	}
	for _, c := range m.jar.Cookies(m.urls[0]) {
		if c.Name == cookieName {
			return c.Value, true
		}
	}
	return "", false
}
