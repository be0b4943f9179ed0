package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/callgate/internal/screen/common/phone"
	"github.com/haukened/callgate/internal/screen/config"
	"github.com/haukened/callgate/internal/screen/domain"
)

func setTestEnv(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("CALLGATE_ENV", "dev")
	t.Setenv("CALLGATE_LOG_LEVEL", "debug")
	t.Setenv("CALLGATE_DB_PATH", filepath.Join(dir, "rules.db"))
	t.Setenv("CALLGATE_DIRECTORY_PATH", filepath.Join(dir, "directory.list"))
	t.Setenv("CALLGATE_STATUS_PATH", "")
	t.Setenv("CALLGATE_CACHE_SIZE", "100")
	t.Setenv("CALLGATE_MAX_ENTRIES", "1000")
}

// TestApplication_Integration tests the full daemon lifecycle: build, startup
// sync, enforcement export, graceful shutdown.
func TestApplication_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	setTestEnv(t, tempDir)

	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := buildApplication(cfg)
	require.NoError(t, err)
	assert.NotNil(t, app)

	// Seed a rule so the startup sync has something to export.
	id, err := phone.NewNormalizer(cfg.ExitCodes...).Normalize("+1 800 555 1234")
	require.NoError(t, err)
	_, err = app.rules.BlockNumber(id)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appErr := make(chan error, 1)
	go func() {
		appErr <- app.Run(ctx)
	}()

	// Wait for the startup sync to publish the enforcement list.
	listPath := filepath.Join(tempDir, "directory.list")
	timeout := time.After(2 * time.Second)
	for {
		if _, err := os.Stat(listPath); err == nil {
			break
		}
		select {
		case <-timeout:
			t.Fatal("Startup sync did not publish the enforcement list within timeout")
		case err := <-appErr:
			t.Fatalf("Daemon exited early: %v", err)
		case <-time.After(10 * time.Millisecond):
		}
	}

	data, err := os.ReadFile(listPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "18005551234")

	// Test graceful shutdown
	cancel()

	select {
	case err := <-appErr:
		assert.NoError(t, err, "Daemon should shutdown gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("Daemon failed to shutdown within timeout")
	}
}

// TestBuildApplication_ConfigurationVariations tests different configurations
func TestBuildApplication_ConfigurationVariations(t *testing.T) {
	tests := []struct {
		name     string
		setupEnv func(t *testing.T, dir string)
		wantErr  bool
	}{
		{
			name:     "full config",
			setupEnv: func(t *testing.T, dir string) {},
			wantErr:  false,
		},
		{
			name: "export disabled",
			setupEnv: func(t *testing.T, dir string) {
				t.Setenv("CALLGATE_DIRECTORY_PATH", "")
			},
			wantErr: false,
		},
		{
			name: "cache disabled",
			setupEnv: func(t *testing.T, dir string) {
				t.Setenv("CALLGATE_CACHE_SIZE", "0")
			},
			wantErr: false,
		},
		{
			name: "unopenable database path",
			setupEnv: func(t *testing.T, dir string) {
				t.Setenv("CALLGATE_DB_PATH", filepath.Join(dir, "missing", "rules.db"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			setTestEnv(t, tempDir)
			tt.setupEnv(t, tempDir)

			cfg, err := config.Load()
			require.NoError(t, err)

			app, err := buildApplication(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, app)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, app)
				assert.NoError(t, app.rules.Close())
			}
		})
	}
}

// TestApplication_ComponentIntegration exercises evaluation, sync, and stats
// against one wired application.
func TestApplication_ComponentIntegration(t *testing.T) {
	tempDir := t.TempDir()
	setTestEnv(t, tempDir)

	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := buildApplication(cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, app.rules.Close()) }()

	// Verify components are wired correctly
	assert.NotNil(t, app.config)
	assert.NotNil(t, app.rules)
	assert.NotNil(t, app.evaluator)
	assert.NotNil(t, app.sync)
	assert.NotNil(t, app.stats)
	assert.Equal(t, 100, app.config.CacheSize)

	id, err := phone.NewNormalizer(cfg.ExitCodes...).Normalize("1-900-555-0000")
	require.NoError(t, err)
	_, err = app.rules.BlockNumber(id)
	require.NoError(t, err)
	_, err = app.rules.BlockCountry("91")
	require.NoError(t, err)

	d := app.evaluator.Screen("+1 (900) 555-0000")
	assert.True(t, d.Blocked)
	assert.Equal(t, domain.ReasonNumber, d.Reason)

	d = app.evaluator.Screen("011 91 98765 43210")
	assert.True(t, d.Blocked)
	assert.Equal(t, domain.ReasonCountry, d.Reason)

	d = app.evaluator.Screen("1 202 555 0100")
	assert.False(t, d.Blocked)

	require.NoError(t, app.sync.SyncNow(context.Background()))
	data, err := os.ReadFile(cfg.DirectoryPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Contains(t, lines, "19005550000")
	assert.Contains(t, lines, "91*")

	s, err := app.stats.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.TotalBlocked)
	assert.Equal(t, uint64(2), s.BlockedToday)
	require.True(t, s.HasTopCountry)
	assert.Equal(t, "91", s.TopCountry.Prefix)
}
