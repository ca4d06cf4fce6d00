package driver

import (
	"fmt"
	"net/url"
)

// WebStorage is the local or session storage of the current page
type WebStorage struct {
	driver *Driver
	kind   string
}

// LocalStorage returns the local storage of the current page
func (d *Driver) LocalStorage() *WebStorage {
	return &WebStorage{driver: d, kind: "local_storage"}
}

// SessionStorage returns the session storage of the current page
func (d *Driver) SessionStorage() *WebStorage {
	return &WebStorage{driver: d, kind: "session_storage"}
}

func (w *WebStorage) path() string {
	return "/session/:sessionId/" + w.kind
}

func (w *WebStorage) keyPath(key string) string {
	return fmt.Sprintf("%s/key/%s", w.path(), url.PathEscape(key))
}

// Keys returns every stored key
func (w *WebStorage) Keys() ([]string, error) {
	var keys []string
	err := w.driver.get(w.path(), &keys)
	return keys, err
}

// Get returns the value for key. ok is false when nothing is stored under it.
func (w *WebStorage) Get(key string) (value string, ok bool, err error) {
	var v *string
	if err := w.driver.get(w.keyPath(key), &v); err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (w *WebStorage) Set(key, value string) error {
	return w.driver.post(w.path(), map[string]string{"key": key, "value": value})
}

func (w *WebStorage) Delete(key string) error {
	return w.driver.del(w.keyPath(key))
}

// Clear removes every key
func (w *WebStorage) Clear() error {
	return w.driver.del(w.path())
}

// Size returns how many keys are stored
func (w *WebStorage) Size() (int, error) {
	var n int
	err := w.driver.get(w.path()+"/size", &n)
	return n, err
}
