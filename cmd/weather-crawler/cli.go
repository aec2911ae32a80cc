package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/loenard97/weather-crawler/internal/buildinfo"
	"github.com/loenard97/weather-crawler/internal/config"
)

const appName = "weather-crawler"

var errUsage = errors.New("usage error")

// parseArgs parses the command line. done reports that help or version
// output was written and nothing else should run.
func parseArgs(args []string, stdout, stderr io.Writer) (flags *pflag.FlagSet, place string, done bool, err error) {
	flags = config.NewFlagSet(appName)
	flags.SetOutput(stderr)
	flags.Usage = func() { usage(stderr, flags) }

	if err := flags.Parse(args); err != nil {
		return nil, "", false, fmt.Errorf("%w: %v", errUsage, err)
	}

	if help, _ := flags.GetBool("help"); help {
		usage(stdout, flags)
		return flags, "", true, nil
	}
	if version, _ := flags.GetBool("version"); version {
		buildinfo.Fprint(stdout, appName)
		return flags, "", true, nil
	}

	switch flags.NArg() {
	case 1:
		place = flags.Arg(0)
	case 0:
		usage(stderr, flags)
		return nil, "", false, fmt.Errorf("%w: missing PLACE", errUsage)
	default:
		usage(stderr, flags)
		return nil, "", false, fmt.Errorf("%w: expected one PLACE, got %d arguments (quote names containing spaces)", errUsage, flags.NArg())
	}

	return flags, place, false, nil
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	_, _ = fmt.Fprintf(w, "Usage: %s [flags] PLACE\n\n", appName)
	_, _ = fmt.Fprintln(w, "Export the current weather at PLACE as Prometheus gauges.")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Flags:")
	_, _ = fmt.Fprint(w, flags.FlagUsages())
}
