package flags

import (
	"github.com/byte4ever/failsafe/cmd/internal/models"
	"github.com/spf13/pflag"
)

type App struct {
	models.App
}

func NewApp() *App {
	return &App{}
}

func (f *App) NewFlagSet() *pflag.FlagSet {
	flagSet := &pflag.FlagSet{}

	flagSet.BoolVarP(&f.Version, "version", "V",
		false,
		"Print the version and exit.")
	flagSet.StringVarP(&f.LogLevel, "log-level", "l",
		"info",
		"Minimum level of log records: debug, info, warn, error.\n"+
			"Retry warnings are hidden at error.")
	flagSet.BoolVarP(&f.Verbose, "verbose", "v",
		false,
		"Log at debug level. Overrides --log-level.")
	flagSet.StringVar(&f.LogFormat, "log-format",
		models.LogFormatText,
		"Encoding of log records: text or json.")

	return flagSet
}

func (f *App) GetApp() *models.App {
	return &f.App
}
