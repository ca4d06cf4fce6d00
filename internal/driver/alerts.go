package driver

// AlertText returns the text of the open alert, confirm or prompt
func (d *Driver) AlertText() (string, error) {
	return d.getString("/session/:sessionId/alert_text")
}

// SetAlertText types into an open prompt
func (d *Driver) SetAlertText(text string) error {
	return d.post("/session/:sessionId/alert_text", map[string]string{"text": text})
}

func (d *Driver) AcceptAlert() error {
	return d.post("/session/:sessionId/accept_alert", nil)
}

func (d *Driver) DismissAlert() error {
	return d.post("/session/:sessionId/dismiss_alert", nil)
}
