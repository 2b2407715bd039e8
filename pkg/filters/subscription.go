package filters

import (
	"regexp"

	"github.com/shashiranjanraj/bgfixture/pkg/collection"
)

// DefaultLastDownload is the fake download timestamp of every downloadable
// subscription.
const DefaultLastDownload int64 = 1234

var downloadableURL = regexp.MustCompile(`^https?://`)

// Subscription is either a downloadable list (http/https URL) or a special,
// user-defined group of filters.
type Subscription struct {
	URL          string    `json:"url"`
	Title        string    `json:"title,omitempty"`
	Disabled     bool      `json:"disabled"`
	LastDownload int64     `json:"lastDownload,omitempty"`
	Special      bool      `json:"special"`
	Filters      []*Filter `json:"filters,omitempty"`
}

func (s *Subscription) copy() *Subscription {
	cp := *s
	cp.Filters = collection.Clone(s.Filters)
	return &cp
}

// IsDownloadable reports whether url names a downloadable list.
func IsDownloadable(url string) bool {
	return downloadableURL.MatchString(url)
}

// SubscriptionFromURL builds the subscription for url. Special subscriptions
// start with a shallow copy of known.
func SubscriptionFromURL(url string, known []*Filter) *Subscription {
	if IsDownloadable(url) {
		return &Subscription{
			URL:          url,
			Title:        "Subscription " + url,
			LastDownload: DefaultLastDownload,
		}
	}

	fs := make([]*Filter, len(known))
	copy(fs, known)
	return &Subscription{URL: url, Special: true, Filters: fs}
}
