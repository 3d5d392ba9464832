// Package csrf supplies the anti-forgery token forwarded on mutating requests.
package csrf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultCookieName = "csrftoken"
	DefaultHeaderName = "X-CSRFToken"
)

var ErrTokenMissing = errors.New("csrf token not present")

// JarToken reads the token from a named cookie held in a cookie jar.
//
// When the cookie is absent and Prime is set, Prime is called once (usually a
// GET that makes the backend issue the cookie) before looking again.
type JarToken struct {
	Jar   http.CookieJar
	URL   *url.URL
	Name  string
	Prime func(ctx context.Context) error
}

func (t *JarToken) Token(ctx context.Context) (string, error) {
	if t == nil || t.Jar == nil || t.URL == nil {
		return "", ErrTokenMissing
	}
	if v, ok := t.lookup(); ok {
		return v, nil
	}
	if t.Prime == nil {
		return "", ErrTokenMissing
	}
	if err := t.Prime(ctx); err != nil {
		return "", fmt.Errorf("prime csrf cookie: %w", err)
	}
	if v, ok := t.lookup(); ok {
		return v, nil
	}
	return "", ErrTokenMissing
}

func (t *JarToken) lookup() (string, bool) {
	name := t.Name
	if name == "" {
		name = DefaultCookieName
	}
	for _, c := range t.Jar.Cookies(t.URL) {
		if c.Name != name || strings.TrimSpace(c.Value) == "" {
			continue
		}
		if v, err := url.PathUnescape(c.Value); err == nil {
			return v, true
		}
		return c.Value, true
	}
	return "", false
}

// Static is a token supplied out of band, e.g. copied from a browser session.
type Static string

func (s Static) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrTokenMissing
	}
	return string(s), nil
}

// SeedCookie stores a cookie for u in jar, used to carry an existing session.
func SeedCookie(jar http.CookieJar, u *url.URL, name, value string) {
	if jar == nil || u == nil || name == "" || value == "" {
		return
	}
	jar.SetCookies(u, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}
