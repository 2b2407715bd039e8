package filters

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const docLinkBase = "https://adblockplus.org/redirect?link="

// DefaultExceptionsURL is the acceptable-ads list advertised through Prefs.
const DefaultExceptionsURL = "https://easylist-downloads.adblockplus.org/exceptionrules.txt"

// Prefs is the flat preference map UI pages read.
type Prefs map[string]any

// DefaultPrefs returns a fresh copy of the default preferences.
func DefaultPrefs() Prefs {
	return Prefs{"subscriptions_exceptionsurl": DefaultExceptionsURL}
}

// DocLink returns the redirect URL for a documentation link.
func DocLink(link string) string {
	return docLinkBase + encodeURIComponent(link)
}

// AppLocale turns a UI locale such as "en_US" into "en-US".
func AppLocale(uiLocale string) string {
	return strings.ReplaceAll(uiLocale, "_", "-")
}

var uriUnescaped = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent escapes like the browser function of the same name.
func encodeURIComponent(s string) string {
	return uriUnescaped.Replace(url.QueryEscape(s))
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// CompareVersions returns the difference between the leading numeric parts
// of a and b, so "34.0" vs "2.6.7" is positive. A side without a number
// yields NaN.
func CompareVersions(a, b string) float64 {
	return parseLeadingFloat(a) - parseLeadingFloat(b)
}

func parseLeadingFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// CSSRules serves element hiding rules. The fixture has none.
type CSSRules struct{}

func (CSSRules) RulesForDomain(domain string) []string { return nil }

// Synchronizer is a placeholder for the download scheduler; nothing is ever
// downloaded.
type Synchronizer struct{}

// Utils groups the helper functions UI pages reach for.
type Utils struct{}

func (Utils) DocLink(link string) string { return DocLink(link) }

func (Utils) AppLocale(uiLocale string) string { return AppLocale(uiLocale) }

func (Utils) CompareVersions(a, b string) float64 { return CompareVersions(a, b) }
