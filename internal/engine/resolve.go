package engine

import (
	"context"

	"github.com/jjgreer/appup/internal/manifest"
	"github.com/jjgreer/appup/internal/notes"
	"github.com/jjgreer/appup/internal/version"
)

// Plan is the resolved decision of which version to install next. Computed
// fresh on every Check; the engine holds the most recent plan so Download
// knows its target.
type Plan struct {
	Current          version.Version  `json:"current_version"`
	Latest           version.Version  `json:"latest_version"`
	Target           version.Version  `json:"target_version"`
	LatestCompatible bool             `json:"latest_compatible"`
	MinimumVersion   *version.Version `json:"minimum_version,omitempty"`
	UpdateAvailable  bool             `json:"update_available"`
	Downloaded       bool             `json:"downloaded"`
	Changelog        *notes.Changelog `json:"changelog,omitempty"`

	target Release
}

// Check resolves the next safe upgrade step: the latest stable release when
// its declared minimum version is met, otherwise the stepping-stone release
// at exactly that minimum version. Multi-hop paths are discovered
// incrementally by re-running Check after each install.
func (e *Engine) Check(ctx context.Context) (*Plan, error) {
	if err := e.sm.begin(OpChecking); err != nil {
		return nil, err
	}
	defer e.sm.end()

	log := e.opLogger(ctx)

	m, err := manifest.LoadDir(e.root)
	if err != nil {
		return nil, err
	}

	releases, err := e.source.ListReleases(ctx)
	if err != nil {
		return nil, err
	}

	plan, err := resolvePlan(m.Version, releases)
	if err != nil {
		return nil, err
	}
	plan.Downloaded = e.hasDownload(plan.Target)
	e.setPlan(plan)

	log.Info().
		Str("component", "engine").
		Str("operation", "check").
		Str("current", plan.Current.String()).
		Str("latest", plan.Latest.String()).
		Str("target", plan.Target.String()).
		Bool("update_available", plan.UpdateAvailable).
		Msg("upgrade path resolved")

	return plan, nil
}

// resolvePlan computes the single-hop upgrade plan from the release history.
func resolvePlan(current version.Version, releases []Release) (*Plan, error) {
	latest, ok := latestStable(releases)
	if !ok {
		return nil, &ResolutionError{Reason: "no stable releases published"}
	}

	md := notes.Parse(latest.Notes)
	plan := &Plan{
		Current:        current,
		Latest:         latest.Version,
		MinimumVersion: md.MinimumVersion,
		Changelog:      md.Changelog,
	}

	if current.Satisfies(md.MinimumVersion) {
		plan.Target = latest.Version
		plan.LatestCompatible = true
		plan.target = latest
	} else {
		step, found := releaseAt(releases, *md.MinimumVersion)
		if !found {
			// No guessing a substitute: the caller decides what to do when
			// the declared stepping stone does not exist.
			return nil, &ResolutionError{Minimum: md.MinimumVersion.String()}
		}
		plan.Target = step.Version
		plan.target = step
	}

	plan.UpdateAvailable = plan.Target.GreaterThan(current)
	return plan, nil
}

// latestStable returns the highest-versioned non-prerelease release.
func latestStable(releases []Release) (Release, bool) {
	var best Release
	found := false
	for _, r := range releases {
		if r.Prerelease || r.Version.IsZero() {
			continue
		}
		if !found || r.Version.GreaterThan(best.Version) {
			best = r
			found = true
		}
	}
	return best, found
}

// releaseAt finds the stable release with exactly the given version.
func releaseAt(releases []Release, v version.Version) (Release, bool) {
	for _, r := range releases {
		if !r.Prerelease && !r.Version.IsZero() && r.Version.Equal(v) {
			return r, true
		}
	}
	return Release{}, false
}
