package session

import (
	"fmt"
	"net/url"
	"strings"
)

// Provider names where a session is hosted
type Provider string

const (
	ProviderLocal        Provider = "local"
	ProviderSauceLabs    Provider = "saucelabs"
	ProviderBrowserStack Provider = "browserstack"
	ProviderTestingBot   Provider = "testingbot"
	ProviderGrid         Provider = "grid"
)

const (
	sauceHubURL        = "http://ondemand.saucelabs.com:80/wd/hub"
	browserStackHubURL = "http://hub.browserstack.com/wd/hub"
	testingBotHubURL   = "http://hub.testingbot.com/wd/hub"
)

// ParseProvider maps a config value to a Provider
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderLocal, ProviderSauceLabs, ProviderBrowserStack, ProviderTestingBot, ProviderGrid:
		return p, nil
	case "sauce":
		return ProviderSauceLabs, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Credentials for a hosted provider. AccessKey is the secret half.
type Credentials struct {
	Username  string
	AccessKey string
}

// Target describes where and what to open
type Target struct {
	Provider    Provider
	Credentials Credentials
	Browser     string
	Version     string
	OS          string

	// Port of the local driver server, ProviderLocal only
	Port int
	// HubURL of the grid hub, ProviderGrid only
	HubURL string
	// APIURL overrides the provider REST endpoint used for annotations
	APIURL string
}

// isMobile reports whether the local driver serves under /hub instead of /wd/hub
func isMobile(browser string) bool {
	b := strings.ToLower(browser)
	return b == "iphone" || b == "android"
}

// ServerURL returns the session endpoint for the target, credentials included
func (t Target) ServerURL() (string, error) {
	switch t.Provider {
	case ProviderLocal:
		if isMobile(t.Browser) {
			return fmt.Sprintf("http://localhost:%d/hub", t.Port), nil
		}
		return fmt.Sprintf("http://localhost:%d/wd/hub", t.Port), nil
	case ProviderSauceLabs:
		return withCredentials(sauceHubURL, t.Credentials)
	case ProviderBrowserStack:
		return withCredentials(browserStackHubURL, t.Credentials)
	case ProviderTestingBot:
		return withCredentials(testingBotHubURL, t.Credentials)
	case ProviderGrid:
		if t.HubURL == "" {
			return "", fmt.Errorf("grid target has no hub url")
		}
		return t.HubURL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, t.Provider)
}

func withCredentials(rawURL string, c Credentials) (string, error) {
	if c.Username == "" || c.AccessKey == "" {
		return "", ErrMissingCredentials
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid hub url %s: %w", rawURL, err)
	}
	u.User = url.UserPassword(c.Username, c.AccessKey)
	return u.String(), nil
}

// Baseline returns the capabilities every session at this provider starts from
func (t Target) Baseline() Capabilities {
	caps := Capabilities{
		BrowserName:       t.Browser,
		JavascriptEnabled: Bool(true),
		Extra:             map[string]any{},
	}

	switch t.Provider {
	case ProviderSauceLabs:
		caps.Platform = strings.ToUpper(t.OS)
		caps.Version = t.Version
	case ProviderBrowserStack:
		caps.Platform = strings.ToUpper(t.OS)
		caps.Version = t.Version
		caps.Extra["browserstack.debug"] = true
	case ProviderTestingBot:
		caps.Platform = strings.ToUpper(t.OS)
		caps.Version = t.Version
	case ProviderGrid:
		caps.Platform = strings.ToUpper(t.OS)
		caps.Version = t.Version
	}
	return caps
}

// retriesOverParallelLimit reports whether creation is retried while the account is at its parallel cap
func (t Target) retriesOverParallelLimit() bool {
	return t.Provider == ProviderBrowserStack
}

// InitAtProvider merges the provider baseline with overrides and opens a session
func InitAtProvider(t Target, overrides Capabilities, opts Options) (*Session, error) {
	serverURL, err := t.ServerURL()
	if err != nil {
		return nil, fmt.Errorf("failed to build server url for %s: %w", t.Provider, err)
	}

	caps := t.Baseline().Merge(overrides)
	opts.target = t

	if t.retriesOverParallelLimit() {
		return createWithRetry(serverURL, caps, opts)
	}
	return Create(serverURL, caps, opts)
}

// InitAtLocal opens a session against a driver server on localhost
func InitAtLocal(port int, browser string, opts Options) (*Session, error) {
	return InitAtProvider(Target{Provider: ProviderLocal, Port: port, Browser: browser}, Capabilities{}, opts)
}

// InitAtSauce opens a session on Sauce Labs
func InitAtSauce(creds Credentials, os, browser, version string, extra Capabilities, opts Options) (*Session, error) {
	t := Target{Provider: ProviderSauceLabs, Credentials: creds, OS: os, Browser: browser, Version: version}
	return InitAtProvider(t, extra, opts)
}

// InitAtBrowserStack opens a session on BrowserStack, waiting for a free parallel slot
func InitAtBrowserStack(creds Credentials, os, browser, version string, extra Capabilities, opts Options) (*Session, error) {
	t := Target{Provider: ProviderBrowserStack, Credentials: creds, OS: os, Browser: browser, Version: version}
	return InitAtProvider(t, extra, opts)
}

// InitAtTestingBot opens a session on TestingBot
func InitAtTestingBot(creds Credentials, os, browser, version string, extra Capabilities, opts Options) (*Session, error) {
	t := Target{Provider: ProviderTestingBot, Credentials: creds, OS: os, Browser: browser, Version: version}
	return InitAtProvider(t, extra, opts)
}

// InitAtHost opens a session on an arbitrary host, e.g. a grid hub
func InitAtHost(host string, port int, browser string, extra Capabilities, opts Options) (*Session, error) {
	t := Target{Provider: ProviderGrid, HubURL: fmt.Sprintf("http://%s:%d/wd/hub", host, port), Browser: browser}
	return InitAtProvider(t, extra, opts)
}

// RunningAtSauce reports whether the session is hosted by Sauce Labs
func (s *Session) RunningAtSauce() bool {
	return s.Provider == ProviderSauceLabs || strings.Contains(s.ServerURL, "saucelabs.com")
}

// SauceURL returns the job page for a Sauce Labs session
func (s *Session) SauceURL() (string, bool) {
	if !s.RunningAtSauce() {
		return "", false
	}
	return "https://saucelabs.com/jobs/" + s.ID, true
}
