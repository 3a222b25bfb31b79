package main

// Build metadata, stamped by the release build:
//
//	go build -ldflags "-X main.buildVersion=v1.2.0 -X main.buildCommit=$(git rev-parse HEAD)"
//
// Unstamped builds report plain "dev".
var (
	buildVersion = "dev"
	buildCommit  = ""
)

// versionString renders the version cobra prints for --version: release tags
// verbatim, dev builds with the stamped commit attached as build metadata.
func versionString() string {
	return renderVersion(buildVersion, buildCommit)
}

func renderVersion(version, commit string) string {
	if version == "" {
		version = "dev"
	}
	if version != "dev" || commit == "" {
		return version
	}
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return version + "+" + commit
}
