package driver

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/dhruvsoni1802/wiredriver/internal/locator"
)

// Element is a handle to an element on the server. The server decides when
// a handle goes stale, the next command on it then fails.
type Element struct {
	driver  *Driver
	ID      string
	Locator string // How the element was found, for diagnostics
}

// Point is an element location in page coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is an element or window size
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (e *Element) path(suffix string) string {
	return fmt.Sprintf("/session/:sessionId/element/%s%s", url.PathEscape(e.ID), suffix)
}

func (e *Element) String() string {
	return fmt.Sprintf("element %s (%s)", e.ID, e.Locator)
}

// Text returns the visible text of the element
func (e *Element) Text() (string, error) {
	return e.driver.getString(e.path("/text"))
}

func (e *Element) Click() error {
	return e.driver.post(e.path("/click"), nil)
}

func (e *Element) Submit() error {
	return e.driver.post(e.path("/submit"), nil)
}

func (e *Element) Clear() error {
	return e.driver.post(e.path("/clear"), nil)
}

// SendKeys types text into the element
func (e *Element) SendKeys(text string) error {
	return e.driver.post(e.path("/value"), map[string]any{"value": splitKeys(text)})
}

// Attribute returns an attribute value. ok is false when the attribute is not set.
func (e *Element) Attribute(name string) (value string, ok bool, err error) {
	var v *string
	if err := e.driver.get(e.path("/attribute/"+url.PathEscape(name)), &v); err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

// CSSProperty returns the computed value of a CSS property
func (e *Element) CSSProperty(name string) (string, error) {
	return e.driver.getString(e.path("/css/" + url.PathEscape(name)))
}

func (e *Element) IsDisplayed() (bool, error) {
	return e.driver.getBool(e.path("/displayed"))
}

func (e *Element) IsEnabled() (bool, error) {
	return e.driver.getBool(e.path("/enabled"))
}

func (e *Element) IsSelected() (bool, error) {
	return e.driver.getBool(e.path("/selected"))
}

// TagName returns the lower case tag name
func (e *Element) TagName() (string, error) {
	return e.driver.getString(e.path("/name"))
}

func (e *Element) Location() (Point, error) {
	var p Point
	err := e.driver.get(e.path("/location"), &p)
	return p, err
}

// LocationInView scrolls the element into view and returns its location
func (e *Element) LocationInView() (Point, error) {
	var p Point
	err := e.driver.get(e.path("/location_in_view"), &p)
	return p, err
}

func (e *Element) Size() (Size, error) {
	var s Size
	err := e.driver.get(e.path("/size"), &s)
	return s, err
}

// Equals asks the server whether both handles refer to the same element
func (e *Element) Equals(other *Element) (bool, error) {
	return e.driver.getBool(e.path("/equals/" + url.PathEscape(other.ID)))
}

// Describe fetches the server's description of the element. It fails when
// the element is gone, which makes it a cheap existence check.
func (e *Element) Describe() (map[string]any, error) {
	resp, err := e.driver.execute(http.MethodGet, e.path(""), nil)
	if err != nil {
		return nil, err
	}
	var desc map[string]any
	if err := resp.DecodeValue(&desc); err != nil {
		return nil, err
	}
	return desc, nil
}

// FindElement looks up a descendant of this element
func (e *Element) FindElement(loc string) (*Element, error) {
	q, err := locator.Parse(loc)
	if err != nil {
		return nil, err
	}
	resp, err := e.driver.execute(http.MethodPost, e.path("/element"), q)
	if err != nil {
		return nil, err
	}
	id, err := resp.ElementID()
	if err != nil {
		return nil, err
	}
	return &Element{driver: e.driver, ID: id, Locator: loc}, nil
}

// FindElements looks up all matching descendants of this element
func (e *Element) FindElements(loc string) ([]*Element, error) {
	q, err := locator.Parse(loc)
	if err != nil {
		return nil, err
	}
	resp, err := e.driver.execute(http.MethodPost, e.path("/elements"), q)
	if err != nil {
		return nil, err
	}
	return e.driver.elements(resp, loc)
}
