package cli

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// cmdResult holds the outcome of one CLI invocation.
type cmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

func runCLI(t *testing.T, args ...string) cmdResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return cmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: code}
}

func seedDB(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	// Pragmas such as writable_schema are per connection.
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

// onlyExport returns the single export file in dir.
func onlyExport(t *testing.T, dir string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "sqlite-export-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return matches[0]
}

func decodeTop(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &top))
	return top
}

func TestRun_NoArgumentsPrintsUsage(t *testing.T) {
	res := runCLI(t)

	assert.Equal(t, exitFailure, res.ExitCode)
	assert.Contains(t, res.Stdout, "Please provide the path")
	assert.Contains(t, res.Stdout, "Usage:")
	assert.Empty(t, res.Stderr)
}

func TestRun_TooManyArguments(t *testing.T) {
	res := runCLI(t, "a.db", "b.db")
	assert.Equal(t, exitFailure, res.ExitCode)
	assert.Contains(t, res.Stdout, "Usage:")
}

func TestRun_MissingFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "backups")
	missing := filepath.Join(t.TempDir(), "missing.db")

	res := runCLI(t, "--output-dir", out, missing)

	assert.Equal(t, exitFailure, res.ExitCode)
	assert.Contains(t, res.Stderr, "File not found: "+missing)
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no output may be written for a missing source")
}

func TestRun_ExportsUsersAndLogs(t *testing.T) {
	src := seedDB(t,
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"CREATE TABLE logs (id INTEGER, msg TEXT)",
		"INSERT INTO users (id, name) VALUES (1, 'A'), (2, 'B')",
	)
	out := filepath.Join(t.TempDir(), "nested", "backups")

	res := runCLI(t, "--output-dir", out, src)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

	assert.Contains(t, res.Stdout, "Opening database: "+src)
	assert.Contains(t, res.Stdout, "Found 2 tables")
	assert.Contains(t, res.Stdout, "  logs: 0 rows")
	assert.Contains(t, res.Stdout, "  users: 2 rows")
	assert.Contains(t, res.Stdout, "Data exported successfully")
	assert.Contains(t, res.Stdout, " KB")

	path := onlyExport(t, out)
	assert.Contains(t, res.Stdout, "Location: "+path)

	top := decodeTop(t, path)
	assert.JSONEq(t, `{"logs":[],"users":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`, string(top["tables"]))
	assert.NotContains(t, top, "errors")
}

func TestRun_UnreadableTableStillExported(t *testing.T) {
	src := seedDB(t,
		"CREATE TABLE a (id INTEGER)",
		"CREATE TABLE z (id INTEGER)",
		"INSERT INTO a VALUES (1), (2)",
		"INSERT INTO z VALUES (3)",
		"PRAGMA writable_schema = ON",
		// A virtual table whose module is unavailable fails only when read.
		"INSERT INTO sqlite_master (type, name, tbl_name, rootpage, sql) VALUES ('table', 'ghost', 'ghost', 0, 'CREATE VIRTUAL TABLE ghost USING nosuchmodule(x)')",
		"PRAGMA writable_schema = OFF",
	)
	out := t.TempDir()

	res := runCLI(t, "--output-dir", out, src)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
	assert.Contains(t, res.Stdout, "ghost: Error - ")

	top := decodeTop(t, onlyExport(t, out))

	var tables map[string][]map[string]any
	require.NoError(t, json.Unmarshal(top["tables"], &tables))
	assert.Len(t, tables, 3)
	assert.Len(t, tables["a"], 2)
	assert.Len(t, tables["z"], 1)
	assert.Empty(t, tables["ghost"])

	var failures map[string]string
	require.NoError(t, json.Unmarshal(top["errors"], &failures))
	assert.Contains(t, failures["ghost"], "nosuchmodule")
}

func TestRun_ConfigFileSetsOutputDir(t *testing.T) {
	src := seedDB(t, "CREATE TABLE t (v TEXT)")
	dir := t.TempDir()
	fromConfig := filepath.Join(dir, "from-config")
	fromFlag := filepath.Join(dir, "from-flag")

	cfg := filepath.Join(dir, "export.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("output_dir: "+fromConfig+"\nlog_level: error\n"), 0o644))

	t.Run("config applies", func(t *testing.T) {
		res := runCLI(t, "--config", cfg, src)
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
		onlyExport(t, fromConfig)
	})

	t.Run("flag overrides config", func(t *testing.T) {
		res := runCLI(t, "--config", cfg, "--output-dir", fromFlag, src)
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
		onlyExport(t, fromFlag)
	})

	t.Run("missing config file fails", func(t *testing.T) {
		res := runCLI(t, "--config", filepath.Join(dir, "nope.yaml"), "--output-dir", fromFlag, src)
		assert.Equal(t, exitFailure, res.ExitCode)
		assert.Contains(t, res.Stderr, "read config")
	})
}

func TestRun_InvalidLogLevel(t *testing.T) {
	src := seedDB(t)
	res := runCLI(t, "--log-level", "loud", "--output-dir", t.TempDir(), src)
	assert.Equal(t, exitFailure, res.ExitCode)
	assert.Contains(t, res.Stderr, "log level")
}

func TestRun_VerboseLogsToStderr(t *testing.T) {
	src := seedDB(t, "CREATE TABLE t (v TEXT)")
	res := runCLI(t, "-v", "--output-dir", t.TempDir(), src)
	require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

	assert.Contains(t, res.Stderr, "run_id=")
	assert.Contains(t, res.Stderr, "export written")
	assert.NotContains(t, res.Stdout, "run_id=")
}

func TestSummary(t *testing.T) {
	src := seedDB(t,
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"CREATE TABLE logs (id INTEGER)",
		"INSERT INTO users (id, name) VALUES (1, 'A'), (2, 'B')",
	)
	out := t.TempDir()
	require.Equal(t, exitSuccess, runCLI(t, "--output-dir", out, src).ExitCode)
	path := onlyExport(t, out)

	t.Run("text", func(t *testing.T) {
		res := runCLI(t, "summary", "--sample", path)
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
		assert.Contains(t, res.Stdout, "Source: "+src)
		assert.Contains(t, res.Stdout, "logs: 0 rows")
		assert.Contains(t, res.Stdout, "users: 2 rows")
		assert.Contains(t, res.Stdout, `"name": "A"`)
		assert.Contains(t, res.Stdout, "2 rows in 2 tables")
	})

	t.Run("json", func(t *testing.T) {
		res := runCLI(t, "summary", "--format", "json", path)
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

		var got struct {
			TotalRows int `json:"totalRows"`
			Tables    []struct {
				Name    string   `json:"name"`
				Rows    int      `json:"rows"`
				Columns []string `json:"columns"`
			} `json:"tables"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Stdout), &got))
		assert.Equal(t, 2, got.TotalRows)
		require.Len(t, got.Tables, 2)
		assert.Equal(t, "logs", got.Tables[0].Name)
		assert.Equal(t, []string{"id", "name"}, got.Tables[1].Columns)
	})

	t.Run("yaml", func(t *testing.T) {
		res := runCLI(t, "summary", "-f", "yaml", "--sample", path)
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)

		var got map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(res.Stdout), &got))
		assert.Equal(t, 2, got["total_rows"])
		assert.True(t, strings.Contains(res.Stdout, "sample:\n"), res.Stdout)
	})

	t.Run("single table", func(t *testing.T) {
		res := runCLI(t, "summary", "--table", "users", path)
		require.Equal(t, exitSuccess, res.ExitCode, res.Stderr)
		assert.Contains(t, res.Stdout, "users: 2 rows")
		assert.NotContains(t, res.Stdout, "logs:")
		assert.Contains(t, res.Stdout, "2 rows in 1 tables")
	})

	t.Run("unknown table", func(t *testing.T) {
		res := runCLI(t, "summary", "-t", "ghost", path)
		assert.Equal(t, exitFailure, res.ExitCode)
		assert.Contains(t, res.Stderr, `no table "ghost"`)
	})

	t.Run("unknown format", func(t *testing.T) {
		res := runCLI(t, "summary", "--format", "xml", path)
		assert.Equal(t, exitFailure, res.ExitCode)
		assert.Contains(t, res.Stderr, "unknown format")
	})

	t.Run("missing file", func(t *testing.T) {
		res := runCLI(t, "summary", filepath.Join(out, "nope.json"))
		assert.Equal(t, exitFailure, res.ExitCode)
		assert.Contains(t, res.Stderr, "Error:")
	})
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "version")
	require.Equal(t, exitSuccess, res.ExitCode)
	assert.Contains(t, res.Stdout, "sqlite-export v"+Version)
	assert.Contains(t, res.Stdout, modulePath)
}
