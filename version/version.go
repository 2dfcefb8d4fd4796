package version

// Version is the current version of cf.
// Overridden at build time via -ldflags.
var Version = "0.1.0"
