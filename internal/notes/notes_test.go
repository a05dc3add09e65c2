package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	text := `## What's new

Lots of improvements.

<!--appup
minimum_version: 1.5.0
changelog:
  fixed: ["crash on empty config"]
  added: ["bearer token auth", "clear command"]
  security: ["path traversal in unpack"]
-->

Thanks to all contributors!`

	md := Parse(text)
	require.NotNil(t, md.MinimumVersion)
	assert.Equal(t, "1.5.0", md.MinimumVersion.String())
	require.NotNil(t, md.Changelog)
	assert.Equal(t, []string{"crash on empty config"}, md.Changelog.Fixed)
	assert.Len(t, md.Changelog.Added, 2)
	assert.Len(t, md.Changelog.Security, 1)
	assert.Empty(t, md.Changelog.Removed)
}

func TestParseNoBlock(t *testing.T) {
	md := Parse("Just a regular release.\n\n- fixed stuff\n- added stuff\n")
	assert.Nil(t, md.MinimumVersion)
	assert.True(t, md.Changelog.Empty())
}

func TestParseUnterminatedBlock(t *testing.T) {
	md := Parse("notes\n<!--appup\nminimum_version: 1.0.0\n")
	assert.Nil(t, md.MinimumVersion)
}

func TestParseMalformedYAML(t *testing.T) {
	// A broken block must not fail the check; it reads as "no constraint".
	md := Parse("<!--appup\nminimum_version: [unclosed\n-->")
	assert.Nil(t, md.MinimumVersion)
}

func TestParseInvalidVersion(t *testing.T) {
	md := Parse("<!--appup\nminimum_version: not-semver\n-->")
	assert.Nil(t, md.MinimumVersion)
}

func TestParseBlockWithoutMinimum(t *testing.T) {
	md := Parse("<!--appup\nchangelog:\n  changed: [\"new look\"]\n-->")
	assert.Nil(t, md.MinimumVersion)
	require.NotNil(t, md.Changelog)
	assert.Equal(t, []string{"new look"}, md.Changelog.Changed)
}
