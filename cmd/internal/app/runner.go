package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"

	"github.com/byte4ever/failsafe"
	"github.com/byte4ever/failsafe/cmd/internal/models"
)

const policyName = "failsafe-run"

var errNoCommand = errors.New("no command to run")

// Runner executes a child command under a retry policy.
type Runner struct {
	policy *failsafe.Policy[struct{}]
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	argv []string
}

// NewRunner prepares argv to run under the policy described by params.
// Each runner tags its log records with a fresh run_id.
func NewRunner(params *models.Retry, argv []string, logger *slog.Logger) (*Runner, error) {
	if len(argv) == 0 {
		return nil, errNoCommand
	}

	logger = logger.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("command", argv[0]),
	)

	opts, err := policyOptions(params)
	if err != nil {
		return nil, err
	}

	opts = append(opts, failsafe.WithLogger(logger))

	var p *failsafe.Policy[struct{}]

	if params.Config != "" {
		reg, err := failsafe.LoadConfig(params.Config, failsafe.WithErrorKinds(errorKinds()))
		if err != nil {
			return nil, err
		}

		if _, ok := reg.Config(params.Policy); !ok {
			return nil, fmt.Errorf("policy %q not found in %s", params.Policy, params.Config)
		}

		p = failsafe.GetPolicy[struct{}](reg, params.Policy, opts...)
	} else {
		opts = append(opts, failsafe.WithRegistry(failsafe.NewRegistry()))
		p = failsafe.NewPolicy[struct{}](policyName, opts...)
	}

	return &Runner{
		policy: p,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		argv:   argv,
	}, nil
}

func policyOptions(params *models.Retry) ([]any, error) {
	if params.Config != "" {
		return nil, nil
	}

	settings := failsafe.RetrySettings{
		MaxRetries: params.MaxRetries,
		Delay:      params.Delay,
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return []any{failsafe.WithRetry(
		failsafe.MaxRetries(params.MaxRetries),
		failsafe.Delay(params.Delay),
		failsafe.RetryOn(ExitCodes(params.ExitCodes...)),
	)}, nil
}

// Run executes the command until it succeeds or the policy gives up. The
// returned error is an *ExitCodeError holding the final attempt's code.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	attempts := 0

	r.logger.Info("starting command", slog.Any("args", r.argv[1:]))

	_, err := r.policy.Do(ctx, func(ctx context.Context) (struct{}, error) {
		attempts++
		r.logger.Debug("attempt", slog.Int("attempt", attempts))

		return struct{}{}, r.exec(ctx)
	})

	code := ExitCode(err)

	r.logger.Info("command finished",
		slog.Int("attempts", attempts),
		slog.Int("exit_code", code),
		slog.Duration("elapsed", time.Since(start)),
	)

	if err != nil {
		return &ExitCodeError{Code: code, Err: err}
	}

	return nil
}

func (r *Runner) exec(ctx context.Context) error {
	//nolint:gosec // running the user's command is the purpose of the tool
	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	//nolint:wrapcheck // exit status is inspected by the policy
	return cmd.Run()
}
