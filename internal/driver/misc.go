package driver

import "net/http"

// Orientation of a mobile device
type Orientation string

const (
	Landscape Orientation = "LANDSCAPE"
	Portrait  Orientation = "PORTRAIT"
)

// AppCacheStatus as numbered by the HTML5 application cache
type AppCacheStatus int

const (
	AppCacheUncached    AppCacheStatus = 0
	AppCacheIdle        AppCacheStatus = 1
	AppCacheChecking    AppCacheStatus = 2
	AppCacheDownloading AppCacheStatus = 3
	AppCacheUpdateReady AppCacheStatus = 4
	AppCacheObsolete    AppCacheStatus = 5
)

// Location is a geolocation fix
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// LogEntry is one line of a server or browser log
type LogEntry struct {
	Timestamp int64  `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

func (d *Driver) Orientation() (Orientation, error) {
	s, err := d.getString("/session/:sessionId/orientation")
	return Orientation(s), err
}

func (d *Driver) SetOrientation(o Orientation) error {
	return d.post("/session/:sessionId/orientation", map[string]string{"orientation": string(o)})
}

func (d *Driver) IsLandscape() (bool, error) {
	o, err := d.Orientation()
	return o == Landscape, err
}

func (d *Driver) IsPortrait() (bool, error) {
	o, err := d.Orientation()
	return o == Portrait, err
}

func (d *Driver) RotateLandscape() error { return d.SetOrientation(Landscape) }
func (d *Driver) RotatePortrait() error  { return d.SetOrientation(Portrait) }

func (d *Driver) Geolocation() (Location, error) {
	var loc Location
	err := d.get("/session/:sessionId/location", &loc)
	return loc, err
}

func (d *Driver) SetGeolocation(loc Location) error {
	return d.post("/session/:sessionId/location", map[string]Location{"location": loc})
}

// IMEEngines lists the available input method engines
func (d *Driver) IMEEngines() ([]string, error) {
	var engines []string
	err := d.get("/session/:sessionId/ime/available_engines", &engines)
	return engines, err
}

func (d *Driver) IMEActiveEngine() (string, error) {
	return d.getString("/session/:sessionId/ime/active_engine")
}

func (d *Driver) IsIMEActive() (bool, error) {
	return d.getBool("/session/:sessionId/ime/activated")
}

func (d *Driver) ActivateIME(engine string) error {
	return d.post("/session/:sessionId/ime/activate", map[string]string{"engine": engine})
}

func (d *Driver) DeactivateIME() error {
	return d.post("/session/:sessionId/ime/deactivate", nil)
}

// Logs returns and clears the log of the given type, e.g. "browser"
func (d *Driver) Logs(logType string) ([]LogEntry, error) {
	resp, err := d.execute(http.MethodPost, "/session/:sessionId/log", map[string]string{"type": logType})
	if err != nil {
		return nil, err
	}
	var entries []LogEntry
	err = resp.DecodeValue(&entries)
	return entries, err
}

func (d *Driver) LogTypes() ([]string, error) {
	var types []string
	err := d.get("/session/:sessionId/log/types", &types)
	return types, err
}

func (d *Driver) AppCacheStatus() (AppCacheStatus, error) {
	var st int
	err := d.get("/session/:sessionId/application_cache/status", &st)
	return AppCacheStatus(st), err
}
