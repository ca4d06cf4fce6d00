package driver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dhruvsoni1802/wiredriver/internal/wait"
)

// ErrWindowNotFound is returned when no window has the requested title
var ErrWindowNotFound = errors.New("window not found")

// CurrentWindow is the handle alias for the focused window
const CurrentWindow = "current"

func (d *Driver) WindowHandle() (string, error) {
	return d.getString("/session/:sessionId/window_handle")
}

func (d *Driver) WindowHandles() ([]string, error) {
	var handles []string
	err := d.get("/session/:sessionId/window_handles", &handles)
	return handles, err
}

// SwitchToWindow focuses the window with the given handle or name
func (d *Driver) SwitchToWindow(handle string) error {
	return d.post("/session/:sessionId/window", map[string]string{"name": handle})
}

// CloseWindow closes the focused window
func (d *Driver) CloseWindow() error {
	return d.del("/session/:sessionId/window")
}

// SelectWindow switches through the open windows until one has the given
// title. The scan stops at the first match, after the last window, or once
// the poll budget is used up.
func (d *Driver) SelectWindow(title string) error {
	handles, err := d.WindowHandles()
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		return fmt.Errorf("%w: no windows open", ErrWindowNotFound)
	}

	var seen []string
	next := 0

	current, err := wait.UntilFunc(d.poller, func() (string, error) {
		handle := handles[next]
		next++
		if err := d.SwitchToWindow(handle); err != nil {
			return "", err
		}
		t, err := d.Title()
		if err != nil {
			return "", err
		}
		seen = append(seen, t)
		return t, nil
	}, func(t string) bool {
		return t == title || next >= len(handles)
	}, d.pollTimeout())
	if err != nil {
		return err
	}

	if current != title {
		return fmt.Errorf("%w: could not find window with title <%s>. Found %d windows: %s",
			ErrWindowNotFound, title, len(seen), strings.Join(seen, "; "))
	}
	return nil
}

// SelectFrame focuses a frame by index, name or id. nil selects the top document.
func (d *Driver) SelectFrame(id any) error {
	return d.post("/session/:sessionId/frame", map[string]any{"id": id})
}

// SelectFrameElement focuses the frame backing el
func (d *Driver) SelectFrameElement(el *Element) error {
	return d.SelectFrame(map[string]string{"ELEMENT": el.ID})
}

func windowPath(handle, suffix string) string {
	if handle == "" {
		handle = CurrentWindow
	}
	return fmt.Sprintf("/session/:sessionId/window/%s/%s", url.PathEscape(handle), suffix)
}

// WindowSize returns the size of a window, "" for the focused one
func (d *Driver) WindowSize(handle string) (Size, error) {
	var s Size
	err := d.get(windowPath(handle, "size"), &s)
	return s, err
}

func (d *Driver) SetWindowSize(handle string, width, height int) error {
	return d.post(windowPath(handle, "size"), map[string]int{"width": width, "height": height})
}

// WindowPosition returns the position of a window, "" for the focused one
func (d *Driver) WindowPosition(handle string) (Point, error) {
	var p Point
	err := d.get(windowPath(handle, "position"), &p)
	return p, err
}

func (d *Driver) SetWindowPosition(handle string, x, y int) error {
	return d.post(windowPath(handle, "position"), map[string]int{"x": x, "y": y})
}

func (d *Driver) MaximizeWindow(handle string) error {
	return d.post(windowPath(handle, "maximize"), nil)
}
