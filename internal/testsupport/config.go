package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vtplay/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Playback draws on the main screen so output can be asserted, and terminal
// size detection is replaced by a fixed 80x24 cell budget.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Logging.Dir = filepath.Join(base, "logs")
	cfgVal.Player.AltScreen = false
	cfgVal.Terminal.Width = 80
	cfgVal.Terminal.Height = 24

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTerminalSize overrides the detected terminal size.
func WithTerminalSize(width, height int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Terminal.Width = width
		b.cfg.Terminal.Height = height
	}
}

// WithFFprobeOutput installs a stub ffprobe that prints output and exits 0.
func WithFFprobeOutput(output string) ConfigOption {
	return func(b *configBuilder) {
		script := fmt.Sprintf("#!/bin/sh\ncat <<'PROBE'\n%s\nPROBE\n", strings.TrimRight(output, "\n"))
		b.cfg.Player.FFprobeBinary = b.writeStub("ffprobe", script)
	}
}

// WithFFmpegFrames installs a stub ffmpeg that writes stderr lines to its
// diagnostic stream and then emits frameBytes zero bytes of pixel data.
func WithFFmpegFrames(frameBytes int, stderr ...string) ConfigOption {
	return func(b *configBuilder) {
		var sb strings.Builder
		sb.WriteString("#!/bin/sh\n")
		for _, line := range stderr {
			fmt.Fprintf(&sb, "printf '%%s\\n' '%s' >&2\n", line)
		}
		fmt.Fprintf(&sb, "head -c %d /dev/zero\n", frameBytes)
		b.cfg.Player.FFmpegBinary = b.writeStub("ffmpeg", sb.String())
	}
}

func (b *configBuilder) writeStub(name, script string) string {
	b.t.Helper()
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create config: %v", err)
	}
	defer f.Close()
	if err := cfg.Encode(f); err != nil {
		t.Fatalf("encode config: %v", err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Logging.Dir)
}
