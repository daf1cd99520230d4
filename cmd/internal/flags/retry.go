package flags

import (
	"github.com/byte4ever/failsafe"
	"github.com/byte4ever/failsafe/cmd/internal/models"
	"github.com/spf13/pflag"
)

type Retry struct {
	models.Retry
}

func NewRetry() *Retry {
	return &Retry{}
}

func (f *Retry) NewFlagSet() *pflag.FlagSet {
	flagSet := &pflag.FlagSet{}

	flagSet.IntVarP(&f.MaxRetries, "max-retries", "n",
		failsafe.DefaultMaxRetries,
		"Total number of attempts, the first one included.")
	flagSet.DurationVarP(&f.Delay, "delay", "d",
		failsafe.DefaultDelay,
		"Pause between two attempts, as a Go duration (500ms, 2s).")
	flagSet.IntSliceVarP(&f.ExitCodes, "retry-on-exit-code", "e",
		nil,
		"Exit code eligible for retry. Can be repeated or comma separated.\n"+
			"If not set, any failure is retried.")
	flagSet.StringVarP(&f.Config, "config", "c",
		"",
		"Path to a JSON or YAML policy file. Overrides the retry flags.")
	flagSet.StringVarP(&f.Policy, "policy", "p",
		"",
		"Name of the policy to use from --config.")

	return flagSet
}

func (f *Retry) GetRetry() *models.Retry {
	return &f.Retry
}
