package csrf

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJar(t *testing.T) (http.CookieJar, *url.URL) {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	u, err := url.Parse("http://127.0.0.1:8000/setup/")
	require.NoError(t, err)
	return jar, u
}

func TestJarTokenReadsNamedCookie(t *testing.T) {
	jar, u := newJar(t)
	SeedCookie(jar, u, "sessionid", "s1")
	SeedCookie(jar, u, DefaultCookieName, "abc%2Bdef")

	token, err := (&JarToken{Jar: jar, URL: u}).Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc+def", token)
}

func TestJarTokenPrimesOnceWhenMissing(t *testing.T) {
	jar, u := newJar(t)
	calls := 0
	provider := &JarToken{Jar: jar, URL: u, Name: "X-CSRF-Token", Prime: func(context.Context) error {
		calls++
		SeedCookie(jar, u, "X-CSRF-Token", "primed")
		return nil
	}}

	token, err := provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "primed", token)

	_, err = provider.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestJarTokenMissingWithoutPrime(t *testing.T) {
	jar, u := newJar(t)
	_, err := (&JarToken{Jar: jar, URL: u}).Token(context.Background())
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestJarTokenPrimeFailureIsWrapped(t *testing.T) {
	jar, u := newJar(t)
	boom := errors.New("connection refused")
	_, err := (&JarToken{Jar: jar, URL: u, Prime: func(context.Context) error { return boom }}).Token(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestStaticToken(t *testing.T) {
	token, err := Static("fixed").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", token)

	_, err = Static("  ").Token(context.Background())
	assert.ErrorIs(t, err, ErrTokenMissing)
}
