package driver

import "time"

// SetAsyncScriptTimeout bounds ExecuteAsyncScript
func (d *Driver) SetAsyncScriptTimeout(timeout time.Duration) error {
	return d.post("/session/:sessionId/timeouts/async_script", map[string]int64{"ms": timeout.Milliseconds()})
}

// SetImplicitWait changes the server-side element search budget of this session only
func (d *Driver) SetImplicitWait(timeout time.Duration) error {
	return d.session.SetImplicitWait(timeout)
}

// SetPageLoadTimeout bounds page loads
func (d *Driver) SetPageLoadTimeout(timeout time.Duration) error {
	return d.post("/session/:sessionId/timeouts", map[string]any{"type": "page load", "ms": timeout.Milliseconds()})
}

// SetPollTimeout changes the client-side poll budget used by assertions and window selection
func (d *Driver) SetPollTimeout(timeout time.Duration) {
	d.session.Wait.Poll = timeout
}
