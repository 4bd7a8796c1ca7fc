package middleware

import "net/http"

// CookieOptions defines a public type used by sealbox APIs.
//
// CookieOptions instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieOptions struct {
	// Name is the cookie name. Empty means "sealbox_session".
	Name string

	Path   string
	Domain string

	// MaxAge follows net/http semantics: zero makes a session cookie,
	// negative deletes it.
	MaxAge int

	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// DefaultCookieOptions describes the defaultcookieoptions operation and its observable behavior.
//
// DefaultCookieOptions may return an error when input validation, dependency calls, or security checks fail.
// DefaultCookieOptions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultCookieOptions() CookieOptions {
	return CookieOptions{
		Name:     "sealbox_session",
		Path:     "/",
		Secure:   true,
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return "sealbox_session"
	}
	return o.Name
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     o.name(),
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HTTPOnly,
		SameSite: o.SameSite,
	}
}

func (o CookieOptions) expired() *http.Cookie {
	c := o.cookie("")
	c.MaxAge = -1
	return c
}
