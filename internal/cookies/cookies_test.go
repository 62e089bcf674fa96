package cookies

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	for _, value := range []string{"abc", "eyJhbGciOiJIUzUxMiJ9.payload.sig", "x"} {
		header := Write("token", value, Options{})
		// The assignment segment of a Set-Cookie value is what the browser
		// echoes back in the Cookie header.
		assignment := strings.SplitN(header, ";", 2)[0]

		got, ok := Read(assignment, "token")
		require.True(t, ok, "value %q", value)
		assert.Equal(t, value, got)
	}
}

func TestReadPicksNamedCookie(t *testing.T) {
	header := "a=1; token=xyz; b=2"

	got, ok := Read(header, "token")
	require.True(t, ok)
	assert.Equal(t, "xyz", got)

	_, ok = Read(header, "missing")
	assert.False(t, ok)

	_, ok = Read("", "token")
	assert.False(t, ok)
}

func TestWriteAttributeOrder(t *testing.T) {
	header := Write("token", "v", Options{
		Expires:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		MaxAge:   2 * time.Hour,
		Path:     "/",
		Domain:   "api.example.com",
		Secure:   true,
		HTTPOnly: true,
		SameSite: "None",
	})

	assert.Equal(t,
		"token=v; Expires=Fri, 02 Jan 2026 03:04:05 GMT; Max-Age=7200; Path=/; Domain=api.example.com; Secure; HttpOnly; SameSite=None",
		header)
}

func TestWriteDefaultsPath(t *testing.T) {
	header := Write("token", "v", Options{})
	assert.Equal(t, "token=v; Path=/", header)
}

func TestDeleteExpiresInThePast(t *testing.T) {
	out := Delete("token", Options{Secure: true, SameSite: "None"})
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "token=;")
	assert.Contains(t, out[0], "Expires=Thu, 01 Jan 1970 00:00:00 GMT")
	assert.Contains(t, out[0], "Max-Age=-1")
	assert.Contains(t, out[0], "Secure")
}

func TestDeleteEmitsHostOnlyVariant(t *testing.T) {
	out := Delete("token", Options{Domain: "api.example.com"})
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "Domain=api.example.com")
	assert.NotContains(t, out[1], "Domain=")
}

func TestDeleteIdempotent(t *testing.T) {
	opts := Options{Domain: "api.example.com", Secure: true}
	first := Delete("token", opts)
	second := Delete("token", opts)
	assert.Equal(t, first, second)
}

func TestDeleteKeepsSetAttributes(t *testing.T) {
	// The clear path reuses the exact options the cookie was set with, so
	// path and flags can never drift between login and logout.
	opts := Options{Path: "/", Secure: true, HTTPOnly: false, SameSite: "None"}
	set := Write("token", "v", opts)
	cleared := Delete("token", opts)[0]

	assert.Contains(t, set, "SameSite=None")
	assert.Contains(t, cleared, "SameSite=None")
	assert.Contains(t, set, "Secure")
	assert.Contains(t, cleared, "Secure")
	assert.NotContains(t, set, "HttpOnly")
	assert.NotContains(t, cleared, "HttpOnly")
}
