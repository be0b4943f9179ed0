package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/haukened/callgate/internal/screen/common/log"
	"github.com/haukened/callgate/internal/screen/domain"
	"github.com/haukened/callgate/internal/screen/gateways/directory"
)

// Exporter implements directory.Directory against the filesystem: the
// enforcement list is written as one entry per line and atomically
// renamed into place, so the extension host never reads a partial list.
// Status is probed from an optional sidecar file the host maintains.
type Exporter struct {
	path       string
	statusPath string
	logger     log.Logger
}

// New constructs an Exporter writing the enforcement list to path. When
// statusPath is empty, the provider is assumed enabled.
func New(path, statusPath string, logger log.Logger) *Exporter {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Exporter{path: path, statusPath: statusPath, logger: logger}
}

// Status reads the sidecar status file. A missing file maps to Unknown:
// the host may simply not have started yet.
func (e *Exporter) Status(_ context.Context) (domain.ExtensionStatus, error) {
	if e.statusPath == "" {
		return domain.ExtensionEnabled, nil
	}
	b, err := os.ReadFile(e.statusPath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ExtensionUnknown, nil
		}
		return domain.ExtensionUnknown, fmt.Errorf("read status file: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "enabled":
		return domain.ExtensionEnabled, nil
	case "disabled":
		return domain.ExtensionDisabled, nil
	case "error":
		return domain.ExtensionError, nil
	default:
		return domain.ExtensionUnknown, nil
	}
}

// Reload writes the full enforcement list to a temporary file and renames
// it over the destination.
func (e *Exporter) Reload(ctx context.Context, list domain.EnforcementList) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("create directory dir: %w", err)
	}

	var b strings.Builder
	for _, entry := range list.Entries {
		b.WriteString(entry.String())
		b.WriteByte('\n')
	}

	tmp := e.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write enforcement list: %w", err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("publish enforcement list: %w", err)
	}

	e.logger.Debug(map[string]any{
		"path":    e.path,
		"entries": list.Len(),
		"version": list.Version,
	}, "enforcement list published")
	return nil
}

var _ directory.Directory = (*Exporter)(nil)
