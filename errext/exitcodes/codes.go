// Package exitcodes contains the constants representing possible pageflow exit error codes.
package exitcodes

// ExitCode is just a type representing a process exit code for pageflow
type ExitCode uint8

// list of exit codes used by pageflow
const (
	NavigationFailed    ExitCode = 97
	DisplayTimeout      ExitCode = 98
	ElementNotFound     ExitCode = 99
	GenericTimeout      ExitCode = 100
	InvalidConfig       ExitCode = 104
	ExternalAbort       ExitCode = 105
	BrowserLaunchFailed ExitCode = 106
	ScenarioFailed      ExitCode = 107
	InvalidScenario     ExitCode = 108
	GoPanic             ExitCode = 109
)
