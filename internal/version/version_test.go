package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v string) {
	t.Helper()
	orig := Version
	Version = v
	t.Cleanup(func() { Version = orig })
}

func TestDefaults(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.Empty(t, GitCommit)
	assert.Empty(t, BuildDate)
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	for _, tc := range []struct{ in, want string }{
		{"1.2.3", "1.2.3"},
		{"0.1.0-dev", "0.1.0-dev"},
		{"2.0.0+meta", "2.0.0+meta"},
		{"nightly", "nightly"},
		{"1.2", "1.2"},
	} {
		withVersion(t, tc.in)
		assert.Equal(t, tc.want, Colored(), tc.in)
	}
}

func TestColoredHighlightsComponents(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	withVersion(t, "1.2.3-rc1")
	out := Colored()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "-rc1")
}
