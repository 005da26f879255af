package config

import "github.com/brettbedarf/dirtree/internal/util"

// Verbosity values accepted by [ConfigOverride.LogLvl] and the -v flag,
// from least to most chatty.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

var verboseLvls = [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}

// VerboseToLogLvl maps a verbosity between 1 (error) and 5 (trace) to a log
// level. Out of range values are clamped.
func VerboseToLogLvl(verbose int) util.LogLevel {
	verbose = max(ErrorVerbose, min(verbose, TraceVerbose))
	return verboseLvls[verbose-1]
}
