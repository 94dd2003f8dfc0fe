package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mrz1836/go-prreview/internal/output"
)

// Build information, set at link time.
//
//nolint:gochecknoglobals // populated via -ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// createVersionCmd prints build information.
func createVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			output.Plainf("go-prreview %s", version)
			output.Plainf("  commit:     %s", commit)
			output.Plainf("  built:      %s", buildDate)
			output.Plainf("  go version: %s", runtime.Version())
			output.Plainf("  platform:   %s/%s", runtime.GOOS, runtime.GOARCH)
		},
	}
}
