// Package buildinfo carries version metadata injected at link time:
//
//	go build -ldflags "-X github.com/loenard97/weather-crawler/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version string
	Date    string
	Commit  string
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// UserAgent returns the product token sent to upstream APIs.
func UserAgent(product string) string {
	if Version == "" {
		return product + "/dev"
	}
	return product + "/" + Version
}

// Fprint writes the version block shown by --version.
func Fprint(w io.Writer, name string) {
	_, _ = fmt.Fprintf(w, "%s\n", name)
	_, _ = fmt.Fprintf(w, "Build version: %s\n", orNA(Version))
	_, _ = fmt.Fprintf(w, "Build date: %s\n", orNA(Date))
	_, _ = fmt.Fprintf(w, "Build commit: %s\n", orNA(Commit))
}
