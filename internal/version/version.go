// Package version carries build metadata injected with -ldflags.
package version

var (
	// Version is the release tag, e.g. v0.3.1. Empty on dev builds.
	Version = ""
	// Commit is the short git SHA the binary was built from.
	Commit = ""
	// Date is the UTC build timestamp in RFC3339 format.
	Date = ""
)

// String returns the version shown in logs and the /version endpoint:
// the release tag when present, otherwise "dev" or "dev-<sha>".
func String() string {
	if Version != "" {
		return Version
	}
	if Commit != "" {
		return "dev-" + Commit
	}
	return "dev"
}
