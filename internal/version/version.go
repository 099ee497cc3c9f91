package version

// Version is set via build-time ldflags in release builds:
// go build -ldflags "-X github.com/zkcodehub/sitectl/internal/version.Version=v1.2.0".
var Version = "unknown"

// Build metadata, also set via ldflags.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
