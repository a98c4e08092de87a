package version

// These are injected at build time with -ldflags.
var (
	Version   = "unknown"
	GitCommit = "unknown"
)
