package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/failsafe"
	"github.com/byte4ever/failsafe/cmd/internal/models"
)

func newTestRunner(t *testing.T, params *models.Retry, script string) (*Runner, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer

	r, err := NewRunner(params, []string{"sh", "-c", script},
		slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)

	r.stdin = strings.NewReader("")
	r.stdout = &bytes.Buffer{}
	r.stderr = &bytes.Buffer{}

	return r, &logs
}

// countLines returns the number of lines in path, 0 when it is missing.
func countLines(t *testing.T, path string) int {
	t.Helper()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)

	return strings.Count(string(data), "\n")
}

func TestRunnerSucceedsAfterRetry(t *testing.T) {
	t.Parallel()

	mark := filepath.Join(t.TempDir(), "mark")
	r, logs := newTestRunner(t,
		&models.Retry{MaxRetries: 3},
		"test -f "+mark+" || { touch "+mark+"; exit 7; }",
	)

	require.NoError(t, r.Run(context.Background()))

	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, "level=WARN"))
	assert.Contains(t, out, "run_id=")
	assert.Contains(t, out, "attempts=2")
	assert.Contains(t, out, "exit_code=0")
}

func TestRunnerPropagatesFinalExitCode(t *testing.T) {
	t.Parallel()

	count := filepath.Join(t.TempDir(), "count")
	r, _ := newTestRunner(t,
		&models.Retry{MaxRetries: 3},
		"echo x >> "+count+"; exit 5",
	)

	err := r.Run(context.Background())

	var ece *ExitCodeError
	require.ErrorAs(t, err, &ece)
	assert.Equal(t, 5, ece.Code)
	assert.Equal(t, 3, countLines(t, count))
}

func TestRunnerSkipsIneligibleExitCode(t *testing.T) {
	t.Parallel()

	count := filepath.Join(t.TempDir(), "count")
	r, logs := newTestRunner(t,
		&models.Retry{MaxRetries: 4, ExitCodes: []int{75}},
		"echo x >> "+count+"; exit 3",
	)

	err := r.Run(context.Background())

	var ece *ExitCodeError
	require.ErrorAs(t, err, &ece)
	assert.Equal(t, 3, ece.Code)
	assert.Equal(t, 1, countLines(t, count))
	assert.NotContains(t, logs.String(), "level=WARN")
}

func TestRunnerFromConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	count := filepath.Join(dir, "count")
	cfg := filepath.Join(dir, "policies.yaml")

	require.NoError(t, os.WriteFile(cfg, []byte(
		"policies:\n"+
			"  deploy:\n"+
			"    retry:\n"+
			"      max_retries: 2\n"+
			"      delay: 0\n"+
			"      errors: [exit_error]\n",
	), 0o600))

	r, _ := newTestRunner(t,
		&models.Retry{Config: cfg, Policy: "deploy"},
		"echo x >> "+count+"; exit 1",
	)

	require.Error(t, r.Run(context.Background()))
	assert.Equal(t, 2, countLines(t, count))
}

func TestNewRunnerErrors(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	_, err := NewRunner(&models.Retry{MaxRetries: 1}, nil, logger)
	require.ErrorIs(t, err, errNoCommand)

	_, err = NewRunner(&models.Retry{MaxRetries: 0}, []string{"true"}, logger)
	require.ErrorIs(t, err, failsafe.ErrInvalidConfig)

	cfg := filepath.Join(t.TempDir(), "policies.json")
	require.NoError(t, os.WriteFile(cfg, []byte(`{"policies": {}}`), 0o600))

	_, err = NewRunner(&models.Retry{Config: cfg, Policy: "missing"}, []string{"true"}, logger)
	require.ErrorContains(t, err, `policy "missing" not found`)
}
