package driver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dhruvsoni1802/wiredriver/internal/locator"
	"github.com/dhruvsoni1802/wiredriver/internal/wire"
)

// FindElement looks up the first element matching loc, e.g. "css selector=#login"
func (d *Driver) FindElement(loc string) (*Element, error) {
	q, err := locator.Parse(loc)
	if err != nil {
		return nil, err
	}
	resp, err := d.execute(http.MethodPost, "/session/:sessionId/element", q)
	if err != nil {
		return nil, err
	}
	id, err := resp.ElementID()
	if err != nil {
		return nil, err
	}
	return &Element{driver: d, ID: id, Locator: loc}, nil
}

// FindElements looks up every element matching loc
func (d *Driver) FindElements(loc string) ([]*Element, error) {
	q, err := locator.Parse(loc)
	if err != nil {
		return nil, err
	}
	resp, err := d.execute(http.MethodPost, "/session/:sessionId/elements", q)
	if err != nil {
		return nil, err
	}
	return d.elements(resp, loc)
}

func (d *Driver) elements(resp *wire.Response, loc string) ([]*Element, error) {
	ids, err := resp.ElementIDs()
	if err != nil {
		return nil, err
	}
	elements := make([]*Element, len(ids))
	for i, id := range ids {
		elements[i] = &Element{driver: d, ID: id, Locator: loc}
	}
	return elements, nil
}

// ActiveElement returns the element that has focus
func (d *Driver) ActiveElement() (*Element, error) {
	resp, err := d.execute(http.MethodPost, "/session/:sessionId/element/active", nil)
	if err != nil {
		return nil, err
	}
	id, err := resp.ElementID()
	if err != nil {
		return nil, err
	}
	return &Element{driver: d, ID: id, Locator: "active=true"}, nil
}

// skipsDescribeProbe reports whether the backend cannot describe elements
func (d *Driver) skipsDescribeProbe() bool {
	switch strings.ToLower(d.session.BrowserName) {
	case "android", "iphone":
		return true
	}
	return false
}

// IsElementPresent reports whether loc matches an element. A missing element
// is not an error. Some backends hand back a cached handle for elements that
// are gone, so the handle is described once before trusting it.
func (d *Driver) IsElementPresent(loc string) (bool, error) {
	el, err := d.FindElement(loc)
	if errors.Is(err, wire.ErrNoSuchElement) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if d.skipsDescribeProbe() {
		return true, nil
	}

	if _, err := el.Describe(); err != nil {
		if errors.Is(err, wire.ErrNoSuchElement) || errors.Is(err, wire.ErrStaleElementReference) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
