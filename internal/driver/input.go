package driver

// Modifier key codes from the protocol's private use range
const (
	KeyShift   = "\uE008"
	KeyControl = "\uE009"
	KeyAlt     = "\uE00A"
	KeyCommand = "\uE03D"
)

// MouseButton as numbered by the protocol
type MouseButton int

const (
	LeftButton   MouseButton = 0
	MiddleButton MouseButton = 1
	RightButton  MouseButton = 2
)

// splitKeys turns text into the one-character-per-entry key sequence
func splitKeys(text string) []string {
	keys := make([]string, 0, len(text))
	for _, r := range text {
		keys = append(keys, string(r))
	}
	return keys
}

// Keys sends keystrokes to the focused element
func (d *Driver) Keys(text string) error {
	return d.post("/session/:sessionId/keys", map[string]any{"value": splitKeys(text)})
}

func (d *Driver) sendModifier(code string, down bool) error {
	return d.post("/session/:sessionId/modifier", map[string]any{"value": code, "isdown": down})
}

func (d *Driver) CtrlDown() error    { return d.sendModifier(KeyControl, true) }
func (d *Driver) CtrlUp() error      { return d.sendModifier(KeyControl, false) }
func (d *Driver) ShiftDown() error   { return d.sendModifier(KeyShift, true) }
func (d *Driver) ShiftUp() error     { return d.sendModifier(KeyShift, false) }
func (d *Driver) AltDown() error     { return d.sendModifier(KeyAlt, true) }
func (d *Driver) AltUp() error       { return d.sendModifier(KeyAlt, false) }
func (d *Driver) CommandDown() error { return d.sendModifier(KeyCommand, true) }
func (d *Driver) CommandUp() error   { return d.sendModifier(KeyCommand, false) }

// MoveCursor moves the mouse by an offset from its current position
func (d *Driver) MoveCursor(right, down int) error {
	return d.post("/session/:sessionId/moveto", map[string]int{"xoffset": right, "yoffset": down})
}

// MoveCursorTo moves the mouse to an offset from the top left corner of el
func (d *Driver) MoveCursorTo(el *Element, right, down int) error {
	return d.post("/session/:sessionId/moveto", map[string]any{"element": el.ID, "xoffset": right, "yoffset": down})
}

// ClickButton clicks at the current mouse position
func (d *Driver) ClickButton(button MouseButton) error {
	return d.post("/session/:sessionId/click", map[string]int{"button": int(button)})
}

func (d *Driver) Click() error       { return d.ClickButton(LeftButton) }
func (d *Driver) MiddleClick() error { return d.ClickButton(MiddleButton) }
func (d *Driver) RightClick() error  { return d.ClickButton(RightButton) }

// ClickAndHold presses the left button without releasing it
func (d *Driver) ClickAndHold() error {
	return d.post("/session/:sessionId/buttondown", nil)
}

func (d *Driver) ReleaseClick() error {
	return d.post("/session/:sessionId/buttonup", nil)
}

func (d *Driver) DoubleClick() error {
	return d.post("/session/:sessionId/doubleclick", nil)
}

// Tap is a single touch on el
func (d *Driver) Tap(el *Element) error {
	return d.post("/session/:sessionId/touch/click", map[string]string{"element": el.ID})
}

func (d *Driver) DoubleTap(el *Element) error {
	return d.post("/session/:sessionId/touch/doubleclick", map[string]string{"element": el.ID})
}

func (d *Driver) LongPress(el *Element) error {
	return d.post("/session/:sessionId/touch/longclick", map[string]string{"element": el.ID})
}

func (d *Driver) TouchDown(x, y int) error {
	return d.post("/session/:sessionId/touch/down", map[string]int{"x": x, "y": y})
}

func (d *Driver) TouchUp(x, y int) error {
	return d.post("/session/:sessionId/touch/up", map[string]int{"x": x, "y": y})
}

func (d *Driver) TouchMove(x, y int) error {
	return d.post("/session/:sessionId/touch/move", map[string]int{"x": x, "y": y})
}

// TouchScroll scrolls the page by an offset
func (d *Driver) TouchScroll(right, down int) error {
	return d.post("/session/:sessionId/touch/scroll", map[string]int{"xoffset": right, "yoffset": down})
}

// Flick swipes with the given speed in pixels per second
func (d *Driver) Flick(xSpeed, ySpeed int) error {
	return d.post("/session/:sessionId/touch/flick", map[string]int{"xspeed": xSpeed, "yspeed": ySpeed})
}
