package locator

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy is one of the element lookup strategies understood by the server.
// The spelling matches the wire protocol vocabulary.
type Strategy string

const (
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByTagName         Strategy = "tag name"
	ByCSSSelector     Strategy = "css selector"
	ByXPath           Strategy = "xpath"
	ByClassName       Strategy = "class name"
	ByLinkText        Strategy = "link text"
	ByPartialLinkText Strategy = "partial link text"
	Active            Strategy = "active"
)

var strategies = map[Strategy]bool{
	ByID:              true,
	ByName:            true,
	ByTagName:         true,
	ByCSSSelector:     true,
	ByXPath:           true,
	ByClassName:       true,
	ByLinkText:        true,
	ByPartialLinkText: true,
	Active:            true,
}

// ErrLocatorParse is returned for locator strings that cannot be turned into a query
var ErrLocatorParse = errors.New("invalid locator")

// Locator is the structured element query sent to the element lookup endpoints
type Locator struct {
	Strategy Strategy `json:"using"`
	Value    string   `json:"value"`
}

// Parse turns "strategy=value" into a Locator. Only the first '=' splits,
// the value is passed through as-is.
func Parse(s string) (Locator, error) {
	strategy, value, found := strings.Cut(s, "=")
	if !found {
		return Locator{}, fmt.Errorf("%w: %q has no strategy", ErrLocatorParse, s)
	}

	if !strategies[Strategy(strategy)] {
		return Locator{}, fmt.Errorf("%w: unknown strategy %q in %q", ErrLocatorParse, strategy, s)
	}

	return Locator{Strategy: Strategy(strategy), Value: value}, nil
}

// MustParse is Parse for locators known at compile time
func MustParse(s string) Locator {
	loc, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return loc
}

// String returns the compact "strategy=value" form
func (l Locator) String() string {
	return string(l.Strategy) + "=" + l.Value
}
