// Package settings provides build metadata, per-run configuration, and
// context helpers shared by the crmx CLI and its internal packages.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "crmx"

// DefaultAPIURL is the base URL of the CRM API when neither flags nor config set one.
const DefaultAPIURL = "http://localhost:8000/api"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds the commit hash, build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds settings for a single execution of the application.
type Run struct {
	MinLogLevel int8
	APIURL      string
	Source      string
	Interactive bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults used by the CLI entry point.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		APIURL:      DefaultAPIURL,
		Source:      "builtin",
		Interactive: false,
		NoColor:     false,
		ExitOnError: true,
	}
}

// UserAgent returns the User-Agent value sent to the CRM API.
func UserAgent() string {
	return CliBinaryName + "/" + VersionInformation.BuildVersion
}
