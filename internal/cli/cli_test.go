package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tracker/internal/paths"
	"github.com/mesh-intelligence/tracker/internal/storage"
	"github.com/mesh-intelligence/tracker/pkg/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// testDirs isolates a CLI run from the user's environment.
type testDirs struct {
	config string
	data   string
}

func newTestDirs(t *testing.T) testDirs {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range envKeys {
		t.Setenv(envPrefix+"_"+strings.ToUpper(key), "")
	}
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvDataDir, "")
	root := t.TempDir()
	return testDirs{
		config: filepath.Join(root, "config"),
		data:   filepath.Join(root, "data"),
	}
}

func run(t *testing.T, d testDirs, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config-dir", d.config, "--data-dir", d.data}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, d testDirs, args ...string) string {
	t.Helper()
	out, err := run(t, d, args...)
	require.NoError(t, err, "tracker %v", args)
	return out
}

func decodeObject(t *testing.T, out string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func decodeArray(t *testing.T, out string) []map[string]any {
	t.Helper()
	var v []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	d := newTestDirs(t)
	out := mustRun(t, d, "version")
	assert.Equal(t, fmt.Sprintf("tracker v%s\nmodule: %s\n", tracker.Version, modulePath), out)
}

func TestInitCreatesConfigAndStorage(t *testing.T) {
	d := newTestDirs(t)

	out := mustRun(t, d, "init")
	assert.Contains(t, out, "Tracker initialized successfully")

	raw, err := os.ReadFile(filepath.Join(d.config, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "backend: file")
	assert.Contains(t, string(raw), "data_dir: "+d.data)

	snapshot, err := os.ReadFile(filepath.Join(d.data, types.DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, "id,type,name,status,description,epic\n\n", string(snapshot))

	// A second init keeps the existing config.
	require.NoError(t, os.WriteFile(filepath.Join(d.config, configFileExt), []byte("backend: file\nlog_level: error\n"), 0o644))
	mustRun(t, d, "init")
	raw, err = os.ReadFile(filepath.Join(d.config, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, "backend: file\nlog_level: error\n", string(raw))
}

func TestEntityLifecycle(t *testing.T) {
	d := newTestDirs(t)

	assert.Equal(t, "Created task: 1\n", mustRun(t, d, "task", "create", "--name", "write docs"))
	assert.Equal(t, "Created epic: 2\n", mustRun(t, d, "epic", "create", "--name", "release", "--description", "v1"))
	assert.Equal(t, "Created subtask: 3\n", mustRun(t, d, "subtask", "create", "--epic", "2", "--name", "tag", "--status", "done"))
	assert.Equal(t, "Created subtask: 4\n", mustRun(t, d, "subtask", "create", "--epic", "2", "--name", "notes"))

	epic := decodeObject(t, mustRun(t, d, "--json", "epic", "get", "2"))
	assert.Equal(t, "EPIC", epic["type"])
	assert.Equal(t, "IN_PROGRESS", epic["status"])
	assert.Equal(t, []any{float64(3), float64(4)}, epic["subtask_ids"])

	mustRun(t, d, "subtask", "update", "4", "--status", "DONE")
	epic = decodeObject(t, mustRun(t, d, "--json", "epic", "get", "2"))
	assert.Equal(t, "DONE", epic["status"])

	mustRun(t, d, "task", "update", "1", "--status", "in-progress")
	task := decodeObject(t, mustRun(t, d, "--json", "task", "get", "1"))
	assert.Equal(t, "write docs", task["name"])
	assert.Equal(t, "IN_PROGRESS", task["status"])

	history := decodeArray(t, mustRun(t, d, "--json", "history"))
	require.Len(t, history, 2)
	assert.Equal(t, float64(2), history[0]["id"])
	assert.Equal(t, float64(1), history[1]["id"])

	subs := decodeArray(t, mustRun(t, d, "--json", "epic", "subtasks", "2"))
	require.Len(t, subs, 2)
	assert.Equal(t, float64(2), subs[0]["epic_id"])

	assert.Equal(t, "Deleted epic: 2\n", mustRun(t, d, "epic", "delete", "2"))
	assert.Equal(t, "No subtasks found.\n", mustRun(t, d, "subtask", "list"))
	history = decodeArray(t, mustRun(t, d, "--json", "history"))
	require.Len(t, history, 1)

	all := mustRun(t, d, "all")
	assert.Contains(t, all, "write docs")
	assert.Contains(t, all, "Total: 1 record(s)")

	// Each command reloads the snapshot, so the counter restarts past the
	// largest surviving id.
	assert.Equal(t, "Created task: 2\n", mustRun(t, d, "task", "create", "--name", "after"))
}

func TestListTable(t *testing.T) {
	d := newTestDirs(t)
	mustRun(t, d, "task", "create", "--name", "alpha")
	mustRun(t, d, "task", "create", "--name", "beta", "--status", "done")

	out := mustRun(t, d, "task", "list")

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "DONE")
	assert.Contains(t, out, "Total: 2 task(s)")
}

func TestNotFoundErrors(t *testing.T) {
	d := newTestDirs(t)
	mustRun(t, d, "task", "create", "--name", "only")

	tests := []struct {
		name string
		args []string
	}{
		{"get missing task", []string{"task", "get", "9"}},
		{"get epic through task id", []string{"epic", "get", "1"}},
		{"update missing subtask", []string{"subtask", "update", "9", "--name", "x"}},
		{"delete missing epic", []string{"epic", "delete", "9"}},
		{"subtask of missing epic", []string{"subtask", "create", "--epic", "9", "--name", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, d, tt.args...)
			assert.ErrorIs(t, err, errNotFound)
			assert.Equal(t, exitUserError, exitCode(err))
		})
	}
}

func TestInvalidArguments(t *testing.T) {
	d := newTestDirs(t)

	_, err := run(t, d, "task", "create", "--name", "x", "--status", "later")
	assert.ErrorContains(t, err, "invalid status")

	_, err = run(t, d, "task", "get", "abc")
	assert.ErrorContains(t, err, "invalid id")

	_, err = run(t, d, "task", "create")
	assert.Error(t, err, "--name is required")
}

func TestClearCommands(t *testing.T) {
	d := newTestDirs(t)
	mustRun(t, d, "task", "create", "--name", "t")
	mustRun(t, d, "epic", "create", "--name", "e")
	mustRun(t, d, "subtask", "create", "--epic", "2", "--name", "s", "--status", "done")

	mustRun(t, d, "subtask", "clear")
	epic := decodeObject(t, mustRun(t, d, "--json", "epic", "get", "2"))
	assert.Equal(t, "NEW", epic["status"])

	mustRun(t, d, "epic", "clear")
	mustRun(t, d, "task", "clear")
	assert.Equal(t, "[]\n", mustRun(t, d, "--json", "all"))
}

func TestSQLiteBackendFromEnv(t *testing.T) {
	d := newTestDirs(t)
	t.Setenv("TRACKER_BACKEND", types.BackendSQLite)

	mustRun(t, d, "task", "create", "--name", "stored in sqlite")

	_, err := os.Stat(filepath.Join(d.data, storage.SQLiteFileName))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(d.data, types.DefaultFileName))
	assert.True(t, os.IsNotExist(err))

	tasks := decodeArray(t, mustRun(t, d, "--json", "task", "list"))
	require.Len(t, tasks, 1)
	assert.Equal(t, "stored in sqlite", tasks[0]["name"])
}

func TestConfigFileSelectsFileName(t *testing.T) {
	d := newTestDirs(t)
	require.NoError(t, os.MkdirAll(d.config, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d.config, configFileExt),
		[]byte("backend: file\nfile_name: board.csv\n"), 0o644))

	mustRun(t, d, "task", "create", "--name", "t")

	_, err := os.Stat(filepath.Join(d.data, "board.csv"))
	assert.NoError(t, err)
}

func TestMalformedSnapshotFails(t *testing.T) {
	d := newTestDirs(t)
	require.NoError(t, os.MkdirAll(d.data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d.data, types.DefaultFileName),
		[]byte("id,type,name,status,description,epic\n1,TASK,t,SOMEDAY,,\n"), 0o644))

	_, err := run(t, d, "task", "list")
	assert.ErrorIs(t, err, types.ErrInvalidStatus)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitSysError, exitCode(fmt.Errorf("%w: disk", types.ErrSaveFailed)))
	assert.Equal(t, exitSysError, exitCode(fmt.Errorf("%w: disk", types.ErrLoadFailed)))
	assert.Equal(t, exitUserError, exitCode(errors.New("bad flag")))
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "WARNING", "error", ""} {
		_, err := newLogger(&bytes.Buffer{}, level)
		assert.NoError(t, err, level)
	}
	_, err := newLogger(&bytes.Buffer{}, "loud")
	assert.Error(t, err)

	var buf bytes.Buffer
	logger, err := newLogger(&buf, "warn")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseStatusFlag(t *testing.T) {
	tests := []struct {
		in   string
		want types.Status
	}{
		{"new", types.StatusNew},
		{"in_progress", types.StatusInProgress},
		{"in-progress", types.StatusInProgress},
		{"DONE", types.StatusDone},
	}
	for _, tt := range tests {
		got, err := parseStatusFlag(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "alpha", "alpha"},
		{"exact width", strings.Repeat("a", 40), strings.Repeat("a", 40)},
		{"long ascii", strings.Repeat("a", 45), strings.Repeat("a", 37) + "..."},
		{"multi-byte", strings.Repeat("ж", 45), strings.Repeat("ж", 37) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateName(tt.in, maxNameWidth)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestListTableKeepsMultiByteNamesValid(t *testing.T) {
	d := newTestDirs(t)
	name := "Подзадача номер один для проверки длинного имени"
	mustRun(t, d, "task", "create", "--name", name)

	out := mustRun(t, d, "task", "list")

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, string([]rune(name)[:37])+"...")
}
