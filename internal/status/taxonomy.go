package status

import (
	"errors"
	"fmt"
	"sort"
)

// Kind is the symbolic name of a wire status code
type Kind string

const (
	Success                    Kind = "Success"
	NoSuchDriver               Kind = "NoSuchDriver"
	NoSuchElement              Kind = "NoSuchElement"
	NoSuchFrame                Kind = "NoSuchFrame"
	UnknownCommand             Kind = "UnknownCommand"
	StaleElementReference      Kind = "StaleElementReference"
	ElementNotVisible          Kind = "ElementNotVisible"
	InvalidElementState        Kind = "InvalidElementState"
	UnknownError               Kind = "UnknownError"
	ElementIsNotSelectable     Kind = "ElementIsNotSelectable"
	JavaScriptError            Kind = "JavaScriptError"
	XPathLookupError           Kind = "XPathLookupError"
	Timeout                    Kind = "Timeout"
	NoSuchWindow               Kind = "NoSuchWindow"
	InvalidCookieDomain        Kind = "InvalidCookieDomain"
	UnableToSetCookie          Kind = "UnableToSetCookie"
	UnexpectedAlertOpen        Kind = "UnexpectedAlertOpen"
	NoAlertOpenError           Kind = "NoAlertOpenError"
	ScriptTimeout              Kind = "ScriptTimeout"
	InvalidElementCoordinates  Kind = "InvalidElementCoordinates"
	IMENotAvailable            Kind = "IMENotAvailable"
	IMEEngineActivationFailed  Kind = "IMEEngineActivationFailed"
	InvalidSelector            Kind = "InvalidSelector"
	SessionNotCreatedException Kind = "SessionNotCreatedException"
	MoveTargetOutOfBounds      Kind = "MoveTargetOutOfBounds"
)

// ErrUnknownStatusCode means the server answered with a status outside the table,
// which usually points at a protocol version mismatch
var ErrUnknownStatusCode = errors.New("unknown status code")

// Entry is one row of the status table
type Entry struct {
	Code        int
	Kind        Kind
	Description string
}

// IsSuccess reports whether the entry is the single success code
func (e Entry) IsSuccess() bool {
	return e.Code == 0
}

func (e Entry) String() string {
	return fmt.Sprintf("%d - %s - %s", e.Code, e.Kind, e.Description)
}

var table = map[int]Entry{
	0:  {0, Success, "The command executed successfully."},
	6:  {6, NoSuchDriver, "A session is either terminated or not started."},
	7:  {7, NoSuchElement, "An element could not be located on the page using the given search parameters."},
	8:  {8, NoSuchFrame, "A request to switch to a frame could not be satisfied because the frame could not be found."},
	9:  {9, UnknownCommand, "The requested resource could not be found, or a request was received using an HTTP method that is not supported by the mapped resource."},
	10: {10, StaleElementReference, "An element command failed because the referenced element is no longer attached to the DOM."},
	11: {11, ElementNotVisible, "An element command could not be completed because the element is not visible on the page."},
	12: {12, InvalidElementState, "An element command could not be completed because the element is in an invalid state (e.g. attempting to click a disabled element)."},
	13: {13, UnknownError, "An unknown server-side error occurred while processing the command."},
	15: {15, ElementIsNotSelectable, "An attempt was made to select an element that cannot be selected."},
	17: {17, JavaScriptError, "An error occurred while executing user supplied JavaScript."},
	19: {19, XPathLookupError, "An error occurred while searching for an element by XPath."},
	21: {21, Timeout, "An operation did not complete before its timeout expired."},
	23: {23, NoSuchWindow, "A request to switch to a different window could not be satisfied because the window could not be found."},
	24: {24, InvalidCookieDomain, "An illegal attempt was made to set a cookie under a different domain than the current page."},
	25: {25, UnableToSetCookie, "A request to set a cookie's value could not be satisfied."},
	26: {26, UnexpectedAlertOpen, "A modal dialog was open, blocking this operation."},
	27: {27, NoAlertOpenError, "An attempt was made to operate on a modal dialog when one was not open."},
	28: {28, ScriptTimeout, "A script did not complete before its timeout expired."},
	29: {29, InvalidElementCoordinates, "The coordinates provided to an interactions operation are invalid."},
	30: {30, IMENotAvailable, "IME was not available."},
	31: {31, IMEEngineActivationFailed, "An IME engine could not be started."},
	32: {32, InvalidSelector, "Argument was an invalid selector (e.g. XPath/CSS)."},
	33: {33, SessionNotCreatedException, "A new session could not be created."},
	34: {34, MoveTargetOutOfBounds, "Target provided for a move action is out of bounds."},
}

// Lookup returns the table entry for a wire status code
func Lookup(code int) (Entry, bool) {
	entry, ok := table[code]
	return entry, ok
}

// Resolve is Lookup for callers that treat a missing code as fatal
func Resolve(code int) (Entry, error) {
	entry, ok := table[code]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrUnknownStatusCode, code)
	}
	return entry, nil
}

// Codes returns every known code in ascending order
func Codes() []int {
	codes := make([]int, 0, len(table))
	for code := range table {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}
