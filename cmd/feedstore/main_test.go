package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppCommands(t *testing.T) {
	app := newApp()

	names := make([]string, 0, len(app.Commands))
	for _, command := range app.Commands {
		names = append(names, command.Name)
	}
	assert.ElementsMatch(t, []string{"get", "put", "ls", "exists", "import"}, names)
}

func TestSetupLoggerRejectsBadLevel(t *testing.T) {
	app := newApp()
	err := app.Run([]string{"feedstore", "--log-level", "loud", "ls"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"repo: file:///var/lib/feedstore\nworkers: 8\natomic: true\nchunk_size: 512\nlog_level: debug\n",
	), 0o644))

	loaded, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file:///var/lib/feedstore", loaded.Repo)
	assert.Equal(t, 8, loaded.Workers)
	assert.True(t, loaded.Atomic)
	assert.Equal(t, 512, loaded.ChunkSize)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestMergeLocatorFlags(t *testing.T) {
	tests := []struct {
		name   string
		rawurl string
		atomic bool
		cfg    config
		want   string
	}{
		{
			name:   "no flags",
			rawurl: "file:///var/lib/feedstore",
			want:   "file:///var/lib/feedstore",
		},
		{
			name:   "atomic flag",
			rawurl: "file:///var/lib/feedstore",
			atomic: true,
			want:   "file:///var/lib/feedstore?atomic=true",
		},
		{
			name:   "config flags",
			rawurl: "file:///var/lib/feedstore",
			cfg:    config{Atomic: true, ChunkSize: 512},
			want:   "file:///var/lib/feedstore?atomic=true&chunk=512",
		},
		{
			name:   "locator query wins",
			rawurl: "file:///var/lib/feedstore?atomic=false&chunk=5",
			atomic: true,
			cfg:    config{ChunkSize: 512},
			want:   "file:///var/lib/feedstore?atomic=false&chunk=5",
		},
		{
			name:   "non-file scheme untouched",
			rawurl: "badger:///var/lib/feedstore",
			atomic: true,
			cfg:    config{Atomic: true, ChunkSize: 512},
			want:   "badger:///var/lib/feedstore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mergeLocatorFlags(tt.rawurl, tt.atomic, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPoolSize(t *testing.T) {
	// Flag default, config unset.
	assert.Equal(t, 4, poolSize(4, false, 0))
	// Config wins over the flag default.
	assert.Equal(t, 8, poolSize(4, false, 8))
	// An explicit flag wins over config.
	assert.Equal(t, 2, poolSize(2, true, 8))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "not-exist.yaml"))
	assert.Error(t, err)
}

func TestPutAndGetRoundTrip(t *testing.T) {
	root := t.TempDir()

	stdin, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	_, err = stdin.WriteString("hello")
	require.NoError(t, err)
	_, err = stdin.Seek(0, 0)
	require.NoError(t, err)

	origStdin := os.Stdin
	os.Stdin = stdin
	t.Cleanup(func() { os.Stdin = origStdin })

	app := newApp()
	err = app.Run([]string{"feedstore", "--repo", "file://" + root, "put", "feeds", "example"})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "feeds", "example"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestImportUsesConfigWorkers(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(source, "a"), []byte("feed a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "b"), []byte("feed b"), 0o644))

	cfgPath := filepath.Join(t.TempDir(), "feedstore.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("workers: 2\n"), 0o644))

	root := t.TempDir()
	app := newApp()
	err := app.Run([]string{"feedstore", "--config", cfgPath, "--repo", "file://" + root, "import", source})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("feed a"), content)
}

func TestImport(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(source, "feeds"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "index"), []byte("top"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "feeds", "a.xml"), []byte("feed a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "feeds", "b.xml"), []byte("feed b"), 0o644))

	root := t.TempDir()
	app := newApp()
	err := app.Run([]string{"feedstore", "--repo", "file://" + root, "import", "--workers", "2", source})
	require.NoError(t, err)

	for path, want := range map[string]string{
		filepath.Join(root, "index"):          "top",
		filepath.Join(root, "feeds", "a.xml"): "feed a",
		filepath.Join(root, "feeds", "b.xml"): "feed b",
	} {
		content, err := os.ReadFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, []byte(want), content, path)
	}
}
