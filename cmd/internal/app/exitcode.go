package app

import (
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strconv"
	"strings"

	"github.com/byte4ever/failsafe"
)

// ExitCodeError carries the exit code the CLI must terminate with.
type ExitCodeError struct {
	Err  error
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d: %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error { return e.Err }

// ExitCode maps a child process error to a process exit code: 0 for nil,
// the child's own code for an *exec.ExitError, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() >= 0 {
		return ee.ExitCode()
	}

	return 1
}

// ExitCodes matches a child process that exited with one of codes. Without
// codes it matches any failure, spawn errors included.
func ExitCodes(codes ...int) failsafe.ErrorKind {
	if len(codes) == 0 {
		return failsafe.AnyError
	}

	names := make([]string, 0, len(codes))
	for _, c := range codes {
		names = append(names, strconv.Itoa(c))
	}

	name := "exit_code(" + strings.Join(names, ",") + ")"

	return failsafe.ErrorFunc(name, func(err error) bool {
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return false
		}

		return slices.Contains(codes, ee.ExitCode())
	})
}

// errorKinds are the extra kinds a policy file used by the CLI may name.
func errorKinds() map[string]failsafe.ErrorKind {
	return map[string]failsafe.ErrorKind{
		"exit_error": failsafe.ErrorAs[*exec.ExitError](),
	}
}
