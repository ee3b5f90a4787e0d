// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Set with -ldflags "-X github.com/olegiv/heavyfix/internal/version.version=v1.2.3".
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = ""
)

// Info contains build-time version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time,omitempty"`
}

// Get returns the version of the running binary.
func Get() Info {
	return Info{Version: version, GitCommit: gitCommit, BuildTime: buildTime}
}

// String formats the info for the -version flag.
func (i Info) String() string {
	if i.BuildTime == "" {
		return fmt.Sprintf("heavyfix %s (%s)", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("heavyfix %s (%s, built %s)", i.Version, i.GitCommit, i.BuildTime)
}
