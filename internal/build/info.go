package build

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	_ "embed"
)

//go:embed VERSION
var rawVersion []byte

// Build information.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
	StartTime = time.Now()
)

//nolint:gochecknoinits // init version.
func init() {
	// Release builds set Version through -ldflags.
	if Version == "" {
		Version = strings.TrimSpace(string(rawVersion))
	}
}

// Info contains build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	StartedAt string `json:"started_at"`
	Uptime    string `json:"uptime"`
}

// GetBuildInfo returns build information.
func GetBuildInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		Platform:  Platform,
		StartedAt: StartTime.UTC().Format(time.RFC3339),
		Uptime:    time.Since(StartTime).String(),
	}
}

// String returns string representation of build info.
func (i Info) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "ecagate %s\n", i.Version)

	if i.Commit != "" {
		fmt.Fprintf(&sb, "  commit:     %s\n", i.Commit)
	}

	if i.BuildTime != "" {
		fmt.Fprintf(&sb, "  built:      %s\n", i.BuildTime)
	}

	fmt.Fprintf(&sb, "  go:         %s\n", i.GoVersion)
	fmt.Fprintf(&sb, "  platform:   %s\n", i.Platform)
	fmt.Fprintf(&sb, "  started at: %s\n", i.StartedAt)
	fmt.Fprintf(&sb, "  uptime:     %s\n", i.Uptime)

	return sb.String()
}
