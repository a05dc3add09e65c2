package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjgreer/appup/internal/version"
)

func rel(tag, notes string, pre bool) Release {
	return Release{
		Version:     version.MustParse(tag),
		AssetName:   "app-" + tag + ".zip",
		AssetURL:    "https://dl.example/app-" + tag + ".zip",
		Notes:       notes,
		Prerelease:  pre,
		PublishedAt: time.Now(),
	}
}

func TestResolveLatestCompatible(t *testing.T) {
	releases := []Release{
		rel("2.0.0", "new major", false),
		rel("1.5.0", "", false),
		rel("1.0.0", "", false),
	}

	plan, err := resolvePlan(version.MustParse("1.5.0"), releases)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", plan.Target.String())
	assert.True(t, plan.LatestCompatible)
	assert.True(t, plan.UpdateAvailable)
}

func TestResolveSteppingStone(t *testing.T) {
	releases := []Release{
		rel("2.0.0", "breaking\n<!--appup\nminimum_version: 1.5.0\n-->", false),
		rel("1.5.0", "", false),
		rel("1.0.0", "", false),
	}

	plan, err := resolvePlan(version.MustParse("1.0.0"), releases)
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", plan.Target.String())
	assert.Equal(t, "2.0.0", plan.Latest.String())
	assert.False(t, plan.LatestCompatible)
	assert.True(t, plan.UpdateAvailable)
	require.NotNil(t, plan.MinimumVersion)
	assert.Equal(t, "1.5.0", plan.MinimumVersion.String())
}

func TestResolveAlreadyCurrent(t *testing.T) {
	releases := []Release{rel("2.0.0", "", false)}

	plan, err := resolvePlan(version.MustParse("2.0.0"), releases)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", plan.Target.String())
	assert.True(t, plan.LatestCompatible)
	assert.False(t, plan.UpdateAvailable)
}

func TestResolveMissingSteppingStone(t *testing.T) {
	releases := []Release{
		rel("2.0.0", "<!--appup\nminimum_version: 1.5.0\n-->", false),
		rel("1.0.0", "", false),
	}

	_, err := resolvePlan(version.MustParse("1.0.0"), releases)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "1.5.0", resErr.Minimum)
}

func TestResolveSkipsPrereleases(t *testing.T) {
	releases := []Release{
		rel("2.1.0-rc.1", "", true),
		rel("2.0.0", "", false),
	}

	plan, err := resolvePlan(version.MustParse("1.0.0"), releases)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", plan.Latest.String())
}

func TestResolveNoStableReleases(t *testing.T) {
	releases := []Release{rel("2.1.0-rc.1", "", true)}

	_, err := resolvePlan(version.MustParse("1.0.0"), releases)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
}
