// Package notes extracts the machine-readable metadata block that release
// authors embed in free-text release notes. The block is YAML wrapped in a
// fixed HTML-comment marker so it stays invisible on the release page:
//
//	<!--appup
//	minimum_version: 1.5.0
//	changelog:
//	  fixed: ["crash on empty config"]
//	  added: ["bearer token auth"]
//	-->
//
// A missing block, missing fields, or a malformed block all mean "no
// constraint declared"; release notes are free text and never fail a check.
package notes

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jjgreer/appup/internal/version"
)

const (
	blockStart = "<!--appup"
	blockEnd   = "-->"
)

// Changelog holds the fixed changelog categories.
type Changelog struct {
	Fixed    []string `yaml:"fixed,omitempty" json:"fixed,omitempty"`
	Added    []string `yaml:"added,omitempty" json:"added,omitempty"`
	Changed  []string `yaml:"changed,omitempty" json:"changed,omitempty"`
	Removed  []string `yaml:"removed,omitempty" json:"removed,omitempty"`
	Security []string `yaml:"security,omitempty" json:"security,omitempty"`
}

// Empty reports whether no category has entries.
func (c *Changelog) Empty() bool {
	if c == nil {
		return true
	}
	return len(c.Fixed)+len(c.Added)+len(c.Changed)+len(c.Removed)+len(c.Security) == 0
}

// Metadata is the parsed content of the release-notes block.
type Metadata struct {
	MinimumVersion *version.Version `yaml:"minimum_version" json:"minimum_version,omitempty"`
	Changelog      *Changelog       `yaml:"changelog" json:"changelog,omitempty"`
}

// Parse scans release notes for the metadata block. It always succeeds;
// anything unrecognizable yields an empty Metadata.
func Parse(text string) Metadata {
	start := strings.Index(text, blockStart)
	if start < 0 {
		return Metadata{}
	}
	body := text[start+len(blockStart):]
	end := strings.Index(body, blockEnd)
	if end < 0 {
		return Metadata{}
	}

	var md Metadata
	if err := yaml.Unmarshal([]byte(body[:end]), &md); err != nil {
		return Metadata{}
	}
	return md
}
