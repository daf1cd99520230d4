package models

// Log record encodings accepted by --log-format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// App holds the flags shared by every failsafe command.
type App struct {
	Version bool
	// Verbose lowers the level to debug, whatever LogLevel says.
	Verbose bool
	// LogLevel is the minimum level written to stderr. Retry warnings
	// disappear above warn.
	LogLevel string
	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string
}
