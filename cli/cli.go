package cli

// Version and Date should be set at build time using ldflags, e.g.:
//
//	-ldflags "-X 'github.com/flarebyte/coachgrade/cli.Version=1.2.3' -X 'github.com/flarebyte/coachgrade/cli.Date=2026-09-01'"
var (
	Version string
	Date    string
)
