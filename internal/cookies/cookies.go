// Package cookies builds and parses HTTP cookie headers with explicit
// control over every attribute. The standard library's http.Cookie covers
// most of this, but deleting a domain-scoped cookie also needs a second
// host-only clear to hit browsers that treat the two as distinct entries,
// and both the set and clear paths must share one attribute set.
package cookies

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Options configures cookie attributes. The same value must be used when
// setting and when deleting a cookie: a path or domain mismatch makes the
// browser silently keep the old entry.
type Options struct {
	Path     string // defaults to "/"
	Domain   string
	Expires  time.Time
	MaxAge   time.Duration // zero means omitted
	Secure   bool
	HTTPOnly bool
	SameSite string // "Strict", "Lax" or "None"
}

// Read parses a semicolon-delimited Cookie header and returns the value
// of the named cookie.
func Read(header string, name string) (string, bool) {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		if key == name {
			return value, true
		}
	}
	return "", false
}

// Write builds a Set-Cookie header value. Attributes are appended in a
// fixed order: Expires, Max-Age, Path, Domain, Secure, HttpOnly, SameSite.
func Write(name string, value string, o Options) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('=')
	b.WriteString(value)

	if !o.Expires.IsZero() {
		// Cookie dates use the GMT zone token, per http.TimeFormat.
		fmt.Fprintf(&b, "; Expires=%s", o.Expires.UTC().Format(http.TimeFormat))
	}
	if o.MaxAge != 0 {
		fmt.Fprintf(&b, "; Max-Age=%d", int(o.MaxAge.Seconds()))
	}

	path := o.Path
	if path == "" {
		path = "/"
	}
	fmt.Fprintf(&b, "; Path=%s", path)

	if o.Domain != "" {
		fmt.Fprintf(&b, "; Domain=%s", o.Domain)
	}
	if o.Secure {
		b.WriteString("; Secure")
	}
	if o.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if o.SameSite != "" {
		fmt.Fprintf(&b, "; SameSite=%s", o.SameSite)
	}

	return b.String()
}

// Delete builds the Set-Cookie values that remove the named cookie. The
// options must match the ones the cookie was set with. When a domain is
// configured a second host-only variant is emitted as well, covering
// deployments where the domain-scoped and host-only cookies coexist.
func Delete(name string, o Options) []string {
	o.Expires = time.Unix(0, 0)
	o.MaxAge = -time.Second

	out := []string{Write(name, "", o)}
	if o.Domain != "" {
		hostOnly := o
		hostOnly.Domain = ""
		out = append(out, Write(name, "", hostOnly))
	}
	return out
}
