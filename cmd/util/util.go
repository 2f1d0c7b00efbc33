// Package util provides the small helpers shared by the command line
// programs: a console logger and assertion-style error handling.
package util

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Logger writes human-readable log lines to stderr. Commands log
// through it; library packages never log.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	With().Timestamp().Logger()

// Fatalf logs the formatted message and exits with a non-zero status.
func Fatalf(format string, v ...interface{}) {
	Logger.Fatal().Msgf(format, v...)
}

// Assert exits fatally when err is non-nil. An optional format string
// and arguments prefix the error message.
func Assert(err error, v ...interface{}) {
	if err != nil {
		if len(v) == 0 {
			Fatalf("%s", err)
		} else {
			format := v[0].(string)
			Fatalf("%s: %s", fmt.Sprintf(format, v[1:]...), err)
		}
	}
}

// Warning logs err (with an optional formatted prefix) and reports
// whether there was an error.
func Warning(err error, v ...interface{}) bool {
	if err == nil {
		return false
	}
	if len(v) == 0 {
		Logger.Warn().Msgf("%s", err)
	} else {
		format := v[0].(string)
		Logger.Warn().Msgf("%s: %s", fmt.Sprintf(format, v[1:]...), err)
	}
	return true
}

// AssertNArg prints the usage and exits unless exactly n positional
// arguments were given.
func AssertNArg(n int) {
	if flag.NArg() != n {
		flag.Usage()
	}
}
