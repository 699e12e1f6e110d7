package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"vtplay/internal/config"
	"vtplay/internal/testsupport"
)

const stubProbeOutput = `[STREAM]
width=8
height=16
avg_frame_rate=25/1
[/STREAM]
[FORMAT]
duration=0:00:10.000000
[/FORMAT]`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	inputPath  string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "home", ".config", "vtplay", "config.toml")
	testsupport.WriteConfig(t, configPath, cfg)

	inputPath := filepath.Join(base, "media", "clip.mkv")
	testsupport.WriteFile(t, inputPath, 1024)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		inputPath:  inputPath,
		baseDir:    base,
	}
}

func writeEnvConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	testsupport.WriteConfig(t, env.configPath, env.cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
