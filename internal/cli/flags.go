package cli

// Flags contains all flags for the CLI.
type Flags struct {
	ConfigFile            string
	PR                    int
	OutputDir             string
	IncludeComments       bool
	IncludeReviewComments bool
	SkipDiff              bool
	CleanCache            bool
	LogLevel              string
	JSONLog               bool
}

// newFlags returns a Flags instance with defaults applied.
func newFlags() *Flags {
	return &Flags{
		ConfigFile: ".prreview.yaml",
		LogLevel:   "info",
	}
}
