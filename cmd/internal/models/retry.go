package models

import "time"

// Retry contains the flags of the run command.
type Retry struct {
	// Config is the path of a JSON or YAML policy file. When set, the
	// retry flags below are ignored.
	Config string
	// Policy names the policy to use from Config.
	Policy string
	// ExitCodes lists the child exit codes eligible for retry. Empty means
	// any failure.
	ExitCodes  []int
	MaxRetries int
	Delay      time.Duration
}
