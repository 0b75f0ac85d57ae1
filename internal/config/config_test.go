package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "", false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "test-epubs"), cfg.InputPath())
	require.Equal(t, Command{"epub-extractor", "dump-toc"}, cfg.Extractor)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRequiredMissing(t *testing.T) {
	_, err := Load(t.TempDir(), "", true)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPreset(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "input_dir: samples\nextractor: jpeg\nlog_level: debug\n")
	cfg, err := Load(dir, "", false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "samples"), cfg.InputPath())
	require.Equal(t, Command{"epub-extractor", "extract-jpeg"}, cfg.Extractor)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadCommandList(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "input_dir: /srv/epubs\nextractor: [python3, epub_dump_toc.py]\n")
	cfg, err := Load(t.TempDir(), p, true)
	require.NoError(t, err)
	require.Equal(t, "/srv/epubs", cfg.InputPath())
	require.Equal(t, Command{"python3", "epub_dump_toc.py"}, cfg.Extractor)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown preset": "extractor: pdf\n",
		"empty command":  "extractor: []\n",
		"bad level":      "log_level: loud\n",
		"bad format":     "log_format: xml\n",
		"bad yaml":       "input_dir: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			write(t, dir, body)
			_, err := Load(dir, "", false)
			require.Error(t, err)
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.LogFormat = "json"
	logger, err := cfg.Logger()
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestCommandResolvesAgainstBaseDir(t *testing.T) {
	cases := []struct {
		name string
		argv Command
		want []string
	}{
		{name: "relative path", argv: Command{"bin/extract.sh", "--flag"}, want: []string{"/srv/harness/bin/extract.sh", "--flag"}},
		{name: "parent dir", argv: Command{"../epub_extractor/dump.sh"}, want: []string{"/srv/epub_extractor/dump.sh"}},
		{name: "absolute", argv: Command{"/usr/bin/extract"}, want: []string{"/usr/bin/extract"}},
		{name: "path lookup", argv: Command{"epub-extractor", "dump-toc"}, want: []string{"epub-extractor", "dump-toc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default("/srv/harness")
			cfg.Extractor = tc.argv
			require.Equal(t, tc.want, cfg.Command())
			require.Equal(t, tc.argv, cfg.Extractor, "config must not be modified")
		})
	}
}
