package fixture_test

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bgfixture/pkg/fixture"
)

func TestParamsFromQuery(t *testing.T) {
	p, err := fixture.ParamsFromQuery("?blockedURLs=http%3A%2F%2Fa.test%2Fad.js,http%3A%2F%2Fb.test&filterError=true&addSubscription=1&unknown=x")

	require.NoError(t, err)
	assert.Equal(t, "http://a.test/ad.js,http://b.test", p.BlockedURLs)
	assert.True(t, p.FilterError)
	assert.True(t, p.AddSubscription)
	assert.False(t, p.SeenDataCorruption)
	assert.False(t, p.FilterlistsReinitialized)
}

func TestParamsApply_OverridesOnlyPresentKeys(t *testing.T) {
	base := fixture.Params{FilterError: true, BlockedURLs: "x"}
	got := base.Apply(url.Values{"filterError": {"false"}, "seenDataCorruption": {"yes"}})

	assert.False(t, got.FilterError)
	assert.True(t, got.SeenDataCorruption)
	assert.Equal(t, "x", got.BlockedURLs)
}

func TestParamsFromQuery_Malformed(t *testing.T) {
	p, err := fixture.ParamsFromQuery("%zz")
	assert.Error(t, err)
	assert.Equal(t, fixture.Params{}, p)

	p, err = fixture.ParamsFromQuery("blockedURLs=http://a.test&bad=%zz&filterError=1")
	assert.Error(t, err)
	assert.Equal(t, fixture.Params{BlockedURLs: "http://a.test", FilterError: true}, p)
}

func TestTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "on"} {
		assert.True(t, fixture.Truthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "no", "off", "y"} {
		assert.False(t, fixture.Truthy(v), v)
	}
}

func TestInfoApply(t *testing.T) {
	info := fixture.DefaultInfo().Apply(url.Values{
		"application":        {"chrome"},
		"applicationVersion": {"40.0"},
		"ignored":            {"x"},
	})

	assert.Equal(t, "gecko", info.Platform)
	assert.Equal(t, "chrome", info.Application)
	assert.Equal(t, "40.0", info.ApplicationVersion)
	assert.Equal(t, "2.6.7", info.AddonVersion)
}

func TestDefaultSeed(t *testing.T) {
	s := fixture.DefaultSeed()
	assert.Len(t, s.Filters, 20)
	assert.Len(t, s.Subscriptions, 4)
	assert.Contains(t, s.Subscriptions, s.CustomSubscription)
}

func TestDecodeSeed_PartialKeepsDefaults(t *testing.T) {
	s, err := fixture.DecodeSeed(strings.NewReader("filters:\n  - foo\n  - '@@bar'\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"foo", "@@bar"}, s.Filters)
	assert.Equal(t, fixture.DefaultSeed().Subscriptions, s.Subscriptions)
	assert.Equal(t, fixture.DefaultCustomSubscription, s.CustomSubscription)
}

func TestDecodeSeed_EmptyAndInvalid(t *testing.T) {
	s, err := fixture.DecodeSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, fixture.DefaultSeed(), s)

	_, err = fixture.DecodeSeed(strings.NewReader("filters: [unclosed"))
	assert.ErrorContains(t, err, "decode seed")
}

func TestLoadSeed_RoundTripThroughFile(t *testing.T) {
	want := fixture.DefaultSeed()
	want.Subscriptions = []string{"https://example.com/a.txt", "~user~1"}
	want.CustomSubscription = "~user~1"

	var buf bytes.Buffer
	require.NoError(t, want.Encode(&buf))

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := fixture.LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadSeed_Missing(t *testing.T) {
	_, err := fixture.LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "open seed")

	s, err := fixture.LoadSeed("")
	require.NoError(t, err)
	assert.Equal(t, fixture.DefaultSeed(), s)
}
