package filters_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bgfixture/pkg/filters"
	"github.com/shashiranjanraj/bgfixture/pkg/notifier"
)

const customURL = "~user~786254"

func newStorage(t *testing.T) (*filters.Storage, *[]notifier.Event, *notifier.Notifier) {
	t.Helper()
	n := notifier.New()
	var events []notifier.Event
	n.AddListener(notifier.Func(func(e notifier.Event) error {
		events = append(events, e)
		return nil
	}))

	known := filters.FromTexts([]string{"@@||taz.de^$document", "###Werbung_Sky"})
	s := filters.NewStorage(n, known, []string{
		"https://easylist-downloads.adblockplus.org/exceptionrules.txt",
		customURL,
	}, customURL)
	return s, &events, n
}

func TestFromText(t *testing.T) {
	cases := map[string]filters.Type{
		"foo":               filters.TypeBlocking,
		"@@foo":             filters.TypeException,
		"example.com##foo":  filters.TypeElemHide,
		"example.com#@#foo": filters.TypeElemHideException,
		"! comment":         filters.TypeComment,
	}
	for text, want := range cases {
		assert.Equal(t, want, filters.FromText(text).Type, text)
	}

	assert.Equal(t, *filters.FromText("foo"), *filters.FromText("  foo  "))
}

func TestSubscriptionFromURL(t *testing.T) {
	known := filters.FromTexts([]string{"a", "b"})

	dl := filters.SubscriptionFromURL("https://example.com/list.txt", known)
	assert.Equal(t, "Subscription https://example.com/list.txt", dl.Title)
	assert.Equal(t, filters.DefaultLastDownload, dl.LastDownload)
	assert.False(t, dl.Special)
	assert.Empty(t, dl.Filters)

	sp := filters.SubscriptionFromURL("~user~1", known)
	assert.True(t, sp.Special)
	assert.Equal(t, known, sp.Filters)

	sp.Filters = sp.Filters[:1]
	assert.Len(t, known, 2, "special subscription must not alias the known slice header")
}

func TestNewStorage_AppendsMissingCustom(t *testing.T) {
	s := filters.NewStorage(notifier.New(), nil, []string{"http://a.test/x.txt"}, "~user~1")

	subs := s.Subscriptions()
	require.Len(t, subs, 2)
	assert.Equal(t, "~user~1", subs[1].URL)
	assert.Equal(t, "~user~1", s.Custom().URL)
}

func TestStorage_AddSubscription(t *testing.T) {
	s, events, _ := newStorage(t)
	sub := &filters.Subscription{URL: "http://example.com/custom.txt", Title: "Custom subscription"}

	added, err := s.AddSubscription(sub)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.AddSubscription(sub)
	require.NoError(t, err)
	assert.False(t, added)

	require.Len(t, *events, 1)
	assert.Equal(t, filters.EventSubscriptionAdded, (*events)[0].Name)
	assert.Same(t, sub, (*events)[0].Payload())

	stored, ok := s.Known(sub.URL)
	require.True(t, ok)
	assert.Equal(t, "Subscription http://example.com/custom.txt", stored.Title)
}

func TestStorage_RemoveSubscription(t *testing.T) {
	s, events, _ := newStorage(t)
	sub := &filters.Subscription{URL: "https://easylist-downloads.adblockplus.org/exceptionrules.txt"}

	removed, err := s.RemoveSubscription(sub)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.RemoveSubscription(sub)
	require.NoError(t, err)
	assert.False(t, removed)

	require.Len(t, *events, 1)
	assert.Equal(t, filters.EventSubscriptionRemoved, (*events)[0].Name)
	_, ok := s.Known(sub.URL)
	assert.False(t, ok)
}

func TestStorage_AddRemoveFilter(t *testing.T) {
	s, events, _ := newStorage(t)
	f := filters.FromText("||ads.example.com^")

	added, err := s.AddFilter(f)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Len(t, s.Filters(), 3)

	added, _ = s.AddFilter(filters.FromText("||ads.example.com^"))
	assert.False(t, added)
	assert.Len(t, s.Filters(), 3)

	removed, err := s.RemoveFilter(filters.FromText("||ads.example.com^"))
	require.NoError(t, err)
	assert.True(t, removed)

	removed, _ = s.RemoveFilter(f)
	assert.False(t, removed)

	names := []string{}
	for _, e := range *events {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{filters.EventFilterAdded, filters.EventFilterRemoved}, names)
	assert.Len(t, s.Filters(), 2)
}

func TestStorage_ReturnsListenerErrors(t *testing.T) {
	s, _, n := newStorage(t)
	boom := errors.New("view exploded")
	n.AddListener(notifier.Func(func(notifier.Event) error { return boom }))

	added, err := s.AddFilter(filters.FromText("x"))
	assert.True(t, added)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, s.Filters(), 3, "the change sticks even when a listener fails")
}

func TestStorage_ListenerMayReenter(t *testing.T) {
	s, _, n := newStorage(t)
	var seen int
	n.AddListener(notifier.Func(func(e notifier.Event) error {
		seen = len(s.Filters())
		return nil
	}))

	_, err := s.AddFilter(filters.FromText("x"))
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}

func TestValidator(t *testing.T) {
	ok := filters.Validator{}
	res := ok.ParseFilter("  foo ")
	require.NotNil(t, res.Filter)
	assert.Equal(t, "foo", res.Filter.Text)
	assert.Empty(t, res.Error)

	list := ok.ParseFilters("a\n\n  \nb##c\n")
	require.Len(t, list.Filters, 2)
	assert.Equal(t, filters.TypeElemHide, list.Filters[1].Type)
	assert.NotNil(t, list.Errors)
	assert.Empty(t, list.Errors)

	failing := filters.Validator{FailAll: true}
	assert.Equal(t, filters.ParseResult{Error: filters.InvalidFilter}, failing.ParseFilter("foo"))
	assert.Equal(t, filters.ParseListResult{Errors: []string{filters.InvalidFilter}}, failing.ParseFilters("a\nb"))
}

func TestParseListResultJSON(t *testing.T) {
	empty, err := json.Marshal(filters.Validator{}.ParseFilters(""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"filters":[],"errors":[]}`, string(empty))

	failed, err := json.Marshal(filters.Validator{FailAll: true}.ParseFilters("a"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":["Invalid filter"]}`, string(failed))
}

func TestMatcher(t *testing.T) {
	m := filters.NewMatcher("http://a.test/ad.js, http://b.test/x.png")

	hit := m.MatchesAny("http://b.test/x.png", "IMAGE", "example.com", true)
	require.NotNil(t, hit)
	assert.Equal(t, filters.TypeBlocking, hit.Type)

	assert.Nil(t, m.MatchesAny("http://c.test/", "SCRIPT", "example.com", false))
	assert.Nil(t, filters.NewMatcher("").MatchesAny("", "", "", false))
	assert.Equal(t, []string{"http://a.test/ad.js", "http://b.test/x.png"}, m.Blocked())
}

func TestDocLink(t *testing.T) {
	assert.Equal(t, "https://adblockplus.org/redirect?link=acceptable_ads", filters.DocLink("acceptable_ads"))
	assert.Equal(t, "https://adblockplus.org/redirect?link=a%20b%26c%3D(d)!", filters.DocLink("a b&c=(d)!"))
}

func TestAppLocale(t *testing.T) {
	assert.Equal(t, "en-US", filters.AppLocale("en_US"))
}

func TestCompareVersions(t *testing.T) {
	assert.InDelta(t, 31.4, filters.CompareVersions("34.0", "2.6.7"), 1e-9)
	assert.Less(t, filters.CompareVersions("2.6", "34.0"), 0.0)
	assert.Zero(t, filters.CompareVersions("34.0.1", "34"))
	assert.True(t, math.IsNaN(filters.CompareVersions("beta", "1")))
}

func TestDefaultPrefs(t *testing.T) {
	p := filters.DefaultPrefs()
	assert.Equal(t, filters.DefaultExceptionsURL, p["subscriptions_exceptionsurl"])
	p["x"] = 1
	assert.NotContains(t, filters.DefaultPrefs(), "x")
}
