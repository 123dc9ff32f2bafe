// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/ChristianF88/bitsort/version.Version=v1.2.0 \
//	    -X github.com/ChristianF88/bitsort/version.Date=2025-01-01T00:00:00Z"
package version

var (
	Version = "dev"
	Date    = ""
)
