package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"portfolio/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callMain(t *testing.T, args ...string) (int, string) {
	t.Helper()

	exitCode := -1
	oldExit, oldArgs, oldOut := exit, os.Args, service.Stdout
	defer func() { exit, os.Args, service.Stdout = oldExit, oldArgs, oldOut }()

	var buf bytes.Buffer
	service.Stdout = &buf
	os.Args = append([]string{"portfolio"}, args...)
	exit = func(code int) { exitCode = code }

	RealMain()
	return exitCode, buf.String()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestMain(t *testing.T) {
	good := writeConfig(t, "env = \"prod\"\n[auth]\njwt_secret = \"s3cret\"\n[storage]\nin_memory = true\n")
	bad := writeConfig(t, "env = \"prod\"\n")

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           nil,
			expectedExit:   1,
			expectedOutput: "Usage: portfolio [-config <path>] <command>",
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedExit:   0,
			expectedOutput: "Usage: portfolio [-config <path>] <command>",
		},
		{
			name:           "version command",
			args:           []string{"version"},
			expectedExit:   0,
			expectedOutput: "portfolio version " + CliVersion,
		},
		{
			name:           "unknown command",
			args:           []string{"-config", good, "unknown"},
			expectedExit:   1,
			expectedOutput: "Unknown command: unknown",
		},
		{
			name:           "in-memory storage has no backup",
			args:           []string{"-config", good, "backup"},
			expectedExit:   1,
			expectedOutput: "Storage is in-memory",
		},
		{
			name:           "invalid config",
			args:           []string{"-config", bad, "init"},
			expectedExit:   1,
			expectedOutput: "auth.jwt_secret is required in prod",
		},
		{
			name:           "unknown flag",
			args:           []string{"-nope", "help"},
			expectedExit:   2,
			expectedOutput: "flag provided but not defined: -nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, output := callMain(t, tt.args...)

			assert.Equal(t, tt.expectedExit, code)
			assert.Contains(t, output, tt.expectedOutput)
		})
	}
}
