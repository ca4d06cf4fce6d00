package driver

import (
	"encoding/json"
	"net/http"
)

func scriptArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		// Elements travel as references
		if el, ok := a.(*Element); ok {
			out[i] = map[string]string{"ELEMENT": el.ID}
			continue
		}
		out[i] = a
	}
	return out
}

func (d *Driver) runScript(path, script string, args []any) (json.RawMessage, error) {
	resp, err := d.execute(http.MethodPost, path, map[string]any{"script": script, "args": scriptArgs(args)})
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := resp.DecodeValue(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ExecuteScript runs script synchronously in the page and returns its raw result
func (d *Driver) ExecuteScript(script string, args ...any) (json.RawMessage, error) {
	return d.runScript("/session/:sessionId/execute", script, args)
}

// ExecuteAsyncScript runs script and waits for it to call its callback
func (d *Driver) ExecuteAsyncScript(script string, args ...any) (json.RawMessage, error) {
	return d.runScript("/session/:sessionId/execute_async", script, args)
}

// EvaluateString runs script and decodes a string result
func (d *Driver) EvaluateString(script string, args ...any) (string, error) {
	raw, err := d.ExecuteScript(script, args...)
	if err != nil {
		return "", err
	}
	var s string
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}
