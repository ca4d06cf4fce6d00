package driver

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrCookieNotFound is returned when no cookie has the requested name
var ErrCookieNotFound = errors.New("cookie not found")

// Cookie as exchanged with the server
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Secure   bool   `json:"secure"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Expiry   *int64 `json:"expiry,omitempty"` // Seconds since the epoch
}

// Cookies returns every cookie visible to the current page
func (d *Driver) Cookies() ([]Cookie, error) {
	var cookies []Cookie
	err := d.get("/session/:sessionId/cookie", &cookies)
	return cookies, err
}

// GetCookie returns the cookie called name
func (d *Driver) GetCookie(name string) (Cookie, error) {
	cookies, err := d.Cookies()
	if err != nil {
		return Cookie{}, err
	}
	for _, c := range cookies {
		if c.Name == name {
			return c, nil
		}
	}
	return Cookie{}, fmt.Errorf("%w: %s", ErrCookieNotFound, name)
}

// CookieProperty returns one property of a cookie by its wire name, e.g. "domain"
func (d *Driver) CookieProperty(name, property string) (any, error) {
	var cookies []map[string]any
	if err := d.get("/session/:sessionId/cookie", &cookies); err != nil {
		return nil, err
	}
	for _, c := range cookies {
		if c["name"] == name {
			v, ok := c[property]
			if !ok {
				return nil, fmt.Errorf("cookie %s has no property %s", name, property)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCookieNotFound, name)
}

// SetCookie adds a cookie to the current page. secure is always sent.
func (d *Driver) SetCookie(c Cookie) error {
	return d.post("/session/:sessionId/cookie", map[string]Cookie{"cookie": c})
}

func (d *Driver) DeleteCookie(name string) error {
	return d.del("/session/:sessionId/cookie/" + url.PathEscape(name))
}

func (d *Driver) DeleteAllCookies() error {
	return d.del("/session/:sessionId/cookie")
}
