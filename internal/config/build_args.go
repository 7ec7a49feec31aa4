package config

import "fmt"

// ModuleName is the name of this module, used by the CLI surface.
const ModuleName = "github/smartkit/relay"

// The following vars are automatically injected via -ldflags.
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetFormattedBuildArgs returns the build arguments in a single formatted string.
func GetFormattedBuildArgs() string {
	return fmt.Sprintf("%v @ %v (%v)", ModuleName, Commit, BuildDate)
}
