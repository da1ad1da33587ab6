// Package paths resolves where export files are written and how they are named.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/sqlite-export/pkg/types"
)

// Output naming.
const (
	BackupsDirName = "backups"
	FilePrefix     = "sqlite-export-"
	FileExt        = ".json"
)

// platform holds process lookups that tests override.
var platform = struct {
	executable   func() (string, error)
	evalSymlinks func(string) (string, error)
}{
	executable:   os.Executable,
	evalSymlinks: filepath.EvalSymlinks,
}

// ToolRoot returns the directory that contains the running executable, with
// symlinks resolved.
func ToolRoot() (string, error) {
	exe, err := platform.executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := platform.evalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// DefaultBackupsDir returns the backups directory that sits next to the
// tool's own directory: <toolRoot>/../backups.
func DefaultBackupsDir() (string, error) {
	root, err := ToolRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(root), BackupsDirName), nil
}

// ResolveBackupsDir returns the output directory following the precedence
// chain: override (flag or config) > DefaultBackupsDir().
func ResolveBackupsDir(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	return DefaultBackupsDir()
}

// stampReplacer makes an ISO-8601 timestamp safe for file names.
var stampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Timestamp formats t as the export date and replaces ':' and '.' with '-'.
func Timestamp(t time.Time) string {
	return stampReplacer.Replace(t.UTC().Format(types.ExportDateFormat))
}

// FileName returns the export file name for t. A positive attempt appends
// "-<attempt>" so runs sharing a millisecond still get distinct names.
func FileName(t time.Time, attempt int) string {
	name := FilePrefix + Timestamp(t)
	if attempt > 0 {
		name += fmt.Sprintf("-%d", attempt)
	}
	return name + FileExt
}
