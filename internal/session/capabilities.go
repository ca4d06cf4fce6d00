package session

import (
	"encoding/json"
	"maps"
	"strconv"
)

// Capabilities is the desired capability set sent at session creation.
// Provider specific flags go in Extra.
type Capabilities struct {
	BrowserName       string
	Version           string
	Platform          string
	JavascriptEnabled *bool
	Extra             map[string]any
}

// Bool is a helper for the optional flags
func Bool(v bool) *bool {
	return &v
}

// Merge returns c with every field set in override replacing the one in c.
// A named capability given through override.Extra replaces c's field too.
func (c Capabilities) Merge(override Capabilities) Capabilities {
	merged := c.normalized()
	override = override.normalized()

	// Left in Extra only when the value has no typed form; it still wins
	for k := range override.Extra {
		merged.clearNamed(k)
	}

	if override.BrowserName != "" {
		merged.BrowserName = override.BrowserName
	}
	if override.Version != "" {
		merged.Version = override.Version
	}
	if override.Platform != "" {
		merged.Platform = override.Platform
	}
	if override.JavascriptEnabled != nil {
		merged.JavascriptEnabled = override.JavascriptEnabled
	}

	extra := make(map[string]any, len(merged.Extra)+len(override.Extra))
	maps.Copy(extra, merged.Extra)
	maps.Copy(extra, override.Extra)
	merged.Extra = extra

	return merged
}

// normalized moves named capabilities found in Extra into their fields.
// A set field wins over the Extra entry of the same name.
func (c Capabilities) normalized() Capabilities {
	out := c
	out.Extra = make(map[string]any, len(c.Extra))
	for k, v := range c.Extra {
		if out.hasNamed(k) {
			continue
		}
		if !out.setNamed(k, v) {
			out.Extra[k] = v
		}
	}
	return out
}

// setNamed stores v in the named field k. It reports false when k is not a
// named capability or v has no usable form for it.
func (c *Capabilities) setNamed(k string, v any) bool {
	switch k {
	case "browserName", "version", "platform":
		str, ok := stringValue(v)
		if !ok {
			return false
		}
		switch k {
		case "browserName":
			c.BrowserName = str
		case "version":
			c.Version = str
		default:
			c.Platform = str
		}
		return true
	case "javascriptEnabled":
		b, ok := v.(bool)
		if !ok {
			return false
		}
		c.JavascriptEnabled = &b
		return true
	}
	return false
}

func (c *Capabilities) hasNamed(k string) bool {
	switch k {
	case "browserName":
		return c.BrowserName != ""
	case "version":
		return c.Version != ""
	case "platform":
		return c.Platform != ""
	case "javascriptEnabled":
		return c.JavascriptEnabled != nil
	}
	return false
}

func (c *Capabilities) clearNamed(k string) {
	switch k {
	case "browserName":
		c.BrowserName = ""
	case "version":
		c.Version = ""
	case "platform":
		c.Platform = ""
	case "javascriptEnabled":
		c.JavascriptEnabled = nil
	}
}

// stringValue accepts strings and numbers, servers report "version": 11
func stringValue(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// Map flattens the capabilities into the wire shape. Named fields win over Extra.
func (c Capabilities) Map() map[string]any {
	m := make(map[string]any, len(c.Extra)+4)
	maps.Copy(m, c.Extra)

	if c.BrowserName != "" {
		m["browserName"] = c.BrowserName
	}
	if c.Version != "" {
		m["version"] = c.Version
	}
	if c.Platform != "" {
		m["platform"] = c.Platform
	}
	if c.JavascriptEnabled != nil {
		m["javascriptEnabled"] = *c.JavascriptEnabled
	}
	return m
}

// MarshalJSON implements json.Marshaler
func (c Capabilities) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Capabilities) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*c = Capabilities{Extra: make(map[string]any)}
	for k, v := range m {
		if !c.setNamed(k, v) {
			c.Extra[k] = v
		}
	}
	return nil
}
