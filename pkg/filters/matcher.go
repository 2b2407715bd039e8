package filters

import (
	"strings"

	"github.com/shashiranjanraj/bgfixture/pkg/collection"
)

// Matcher blocks exactly the URLs it was built with.
type Matcher struct {
	blocked []string
}

// NewMatcher takes the comma-separated blockedURLs parameter.
func NewMatcher(blockedURLs string) *Matcher {
	parts := collection.Map(strings.Split(blockedURLs, ","), strings.TrimSpace)
	return &Matcher{blocked: collection.Filter(parts, func(s string) bool { return s != "" })}
}

// MatchesAny returns a blocking filter when url is on the block list and nil
// otherwise. The request type, document domain and third-party flag are
// accepted for signature parity and ignored.
func (m *Matcher) MatchesAny(url, requestType, docDomain string, thirdParty bool) *Filter {
	if collection.Contains(m.blocked, func(b string) bool { return b == url }) {
		return Blocking(url)
	}
	return nil
}

// Blocked returns the block list.
func (m *Matcher) Blocked() []string {
	return collection.Clone(m.blocked)
}
