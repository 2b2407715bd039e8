package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bgfixture/config"
	"github.com/shashiranjanraj/bgfixture/pkg/fixture"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.PersistentFlags().Set("seed", "")
		config.Set("FIXTURE_SEED_FILE", "")
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRouteList(t *testing.T) {
	out := execute(t, "route:list")

	for _, want := range []string{"/api/subscriptions", "subscriptions.destroy", "/api/events", "/api/graphql", "/healthz"} {
		assert.Contains(t, out, want)
	}
}

func TestSeedRoundTrip(t *testing.T) {
	out := execute(t, "seed")

	seed, err := fixture.DecodeSeed(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Equal(t, fixture.DefaultSeed().Subscriptions, seed.Subscriptions)
	assert.Len(t, seed.Filters, 20)
}

func TestSeedFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("subscriptions:\n  - https://only.test/list.txt\n"), 0o644))

	out := execute(t, "seed", "--seed", path)
	assert.Contains(t, out, "https://only.test/list.txt")
	assert.NotContains(t, out, "easylist")
}
