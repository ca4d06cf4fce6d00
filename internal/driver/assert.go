package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dhruvsoni1802/wiredriver/internal/wait"
)

// ErrAssertionFailed matches every *AssertionError
var ErrAssertionFailed = errors.New("assertion failed")

// AssertionError reports the last value observed when a poll ran out of time
type AssertionError struct {
	What     string
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("failed asserting that %s is <%v>, got <%v>", e.What, e.Expected, e.Actual)
}

func (e *AssertionError) Unwrap() error {
	return ErrAssertionFailed
}

// assertEventually polls op until it returns expected within the session's poll budget
func assertEventually[T comparable](d *Driver, what string, op func() (T, error), expected T) error {
	got, err := wait.Until(d.poller, op, expected, d.pollTimeout())
	if err != nil {
		return err
	}
	if got != expected {
		return &AssertionError{What: what, Expected: expected, Actual: got}
	}
	return nil
}

func (d *Driver) AssertURL(expected string) error {
	return assertEventually(d, "url", d.URL, expected)
}

func (d *Driver) AssertTitle(expected string) error {
	return assertEventually(d, "title", d.Title, expected)
}

// AssertPageLoaded waits for document.readyState to become complete
func (d *Driver) AssertPageLoaded() error {
	return assertEventually(d, "document.readyState", func() (string, error) {
		return d.EvaluateString("return document.readyState;")
	}, "complete")
}

// AssertElementCount waits until loc matches exactly n elements
func (d *Driver) AssertElementCount(loc string, n int) error {
	return assertEventually(d, fmt.Sprintf("count of <%s>", loc), func() (int, error) {
		els, err := d.FindElements(loc)
		return len(els), err
	}, n)
}

// AssertCookieValue waits for the named cookie to hold value. A missing cookie counts as a mismatch.
func (d *Driver) AssertCookieValue(name, value string) error {
	return assertEventually(d, fmt.Sprintf("cookie <%s>", name), func() (string, error) {
		c, err := d.GetCookie(name)
		if errors.Is(err, ErrCookieNotFound) {
			return "", nil
		}
		return c.Value, err
	}, value)
}

func (d *Driver) AssertAlertText(expected string) error {
	return assertEventually(d, "alert text", d.AlertText, expected)
}

func (d *Driver) AssertElementPresent(loc string) error {
	return assertEventually(d, fmt.Sprintf("<%s> present", loc), func() (bool, error) {
		return d.IsElementPresent(loc)
	}, true)
}

func (d *Driver) AssertElementNotPresent(loc string) error {
	return assertEventually(d, fmt.Sprintf("<%s> present", loc), func() (bool, error) {
		return d.IsElementPresent(loc)
	}, false)
}

// AssertStringPresent waits for the body text to contain s
func (d *Driver) AssertStringPresent(s string) error {
	return d.assertBodyText(s, true)
}

// AssertStringNotPresent waits for the body text to stop containing s
func (d *Driver) AssertStringNotPresent(s string) error {
	return d.assertBodyText(s, false)
}

func (d *Driver) assertBodyText(s string, present bool) error {
	text, err := wait.UntilFunc(d.poller, d.BodyText, func(text string) bool {
		return strings.Contains(text, s) == present
	}, d.pollTimeout())
	if err != nil {
		return err
	}
	if strings.Contains(text, s) != present {
		what := fmt.Sprintf("page text contains <%s>", s)
		return &AssertionError{What: what, Expected: present, Actual: text}
	}
	return nil
}
