// Package fixture turns URL query parameters into the knobs that shape the
// fake background (failing validation, blocked URLs, the delayed subscription
// message) and provides the seed data everything starts from.
package fixture

import (
	"fmt"
	"net/url"
	"strings"
)

// Params are the query-driven switches. Only these keys are read from a
// query; anything else is ignored.
type Params struct {
	BlockedURLs              string `json:"blockedURLs"`
	SeenDataCorruption       bool   `json:"seenDataCorruption"`
	FilterlistsReinitialized bool   `json:"filterlistsReinitialized"`
	AddSubscription          bool   `json:"addSubscription"`
	FilterError              bool   `json:"filterError"`
}

// Apply returns p with every known key present in q overridden.
func (p Params) Apply(q url.Values) Params {
	if v, ok := lookup(q, "blockedURLs"); ok {
		p.BlockedURLs = v
	}
	if v, ok := lookup(q, "seenDataCorruption"); ok {
		p.SeenDataCorruption = Truthy(v)
	}
	if v, ok := lookup(q, "filterlistsReinitialized"); ok {
		p.FilterlistsReinitialized = Truthy(v)
	}
	if v, ok := lookup(q, "addSubscription"); ok {
		p.AddSubscription = Truthy(v)
	}
	if v, ok := lookup(q, "filterError"); ok {
		p.FilterError = Truthy(v)
	}
	return p
}

// ParamsFromQuery parses params from a raw query string. Well-formed pairs
// are applied even when another pair is malformed; the first parse error is
// returned alongside.
func ParamsFromQuery(raw string) (Params, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		err = fmt.Errorf("fixture: params %q: %w", raw, err)
	}
	return Params{}.Apply(q), err
}

// Info describes the host application the UI believes it runs in.
type Info struct {
	Platform           string `json:"platform" yaml:"platform"`
	PlatformVersion    string `json:"platformVersion" yaml:"platformVersion"`
	Application        string `json:"application" yaml:"application"`
	ApplicationVersion string `json:"applicationVersion" yaml:"applicationVersion"`
	AddonName          string `json:"addonName" yaml:"addonName"`
	AddonVersion       string `json:"addonVersion" yaml:"addonVersion"`
}

// DefaultInfo is a Firefox 34 build of the add-on.
func DefaultInfo() Info {
	return Info{
		Platform:           "gecko",
		PlatformVersion:    "34.0",
		Application:        "firefox",
		ApplicationVersion: "34.0",
		AddonName:          "adblockplus",
		AddonVersion:       "2.6.7",
	}
}

// Apply returns i with any field named in q overridden.
func (i Info) Apply(q url.Values) Info {
	for key, dst := range map[string]*string{
		"platform":           &i.Platform,
		"platformVersion":    &i.PlatformVersion,
		"application":        &i.Application,
		"applicationVersion": &i.ApplicationVersion,
		"addonName":          &i.AddonName,
		"addonVersion":       &i.AddonVersion,
	} {
		if v, ok := lookup(q, key); ok {
			*dst = v
		}
	}
	return i
}

func lookup(q url.Values, key string) (string, bool) {
	vs, ok := q[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Truthy accepts the usual spellings of true; anything else is false.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
