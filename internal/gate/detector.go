package gate

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/edufiliova/navigator/model"
)

// DefaultAuthOnlyHosts are the legacy hosts that serve only the auth flows.
var DefaultAuthOnlyHosts = []string{
	"app.edufiliova.com",
	"www.app.edufiliova.com",
	"edufiliova.click",
	"www.edufiliova.click",
}

// Detector derives the runtime environment of a client from its host, path,
// query and the app-shell header.
type Detector struct {
	hosts         map[string]bool
	appSubdomains bool
}

// NewDetector creates a Detector. With appSubdomains set, any host starting
// with "app." is treated as auth-only.
func NewDetector(hosts []string, appSubdomains bool) *Detector {
	if len(hosts) == 0 {
		hosts = DefaultAuthOnlyHosts
	}
	m := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		m[strings.ToLower(h)] = true
	}
	return &Detector{hosts: m, appSubdomains: appSubdomains}
}

// Detect reports the environment for a request. The /app route and the
// ?app=true flag mark the packaged shell, which is also auth-only. A truthy
// appShellHeader marks the shell without changing the domain.
func (d *Detector) Detect(host, rawURL, appShellHeader string) model.Environment {
	env := model.Environment{Host: host}

	path, query := "", url.Values{}
	if u, err := url.Parse(rawURL); err == nil {
		path = strings.ToLower(u.Path)
		query = u.Query()
	}

	appRoute := path == "/app" || strings.HasPrefix(path, "/app/") || query.Get("app") == "true"
	if appRoute {
		env.IsMobileAppShell = true
		env.IsAuthOnlyDomain = true
	}
	if headerTruthy(appShellHeader) {
		env.IsMobileAppShell = true
	}
	if d.authOnlyHost(host) {
		env.IsAuthOnlyDomain = true
	}
	return env
}

func (d *Detector) authOnlyHost(host string) bool {
	h := strings.ToLower(host)
	if hostOnly, _, err := net.SplitHostPort(h); err == nil {
		h = hostOnly
	}
	if d.hosts[h] {
		return true
	}
	return d.appSubdomains && strings.HasPrefix(h, "app.")
}

func headerTruthy(v string) bool {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "cordova") {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
