package cmd

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Iron-Ham/diffwatch/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// executeCommand is a helper to execute cobra commands in tests
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	return executeCommandContext(context.Background(), root, args...)
}

func executeCommandContext(ctx context.Context, root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.ExecuteContext(ctx)
	return buf.String(), err
}

// isolateConfig keeps a user's config file and environment out of the test.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "DIFFWATCH_") {
			t.Setenv(name, "")
		}
	}
}

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}
}

func TestRootCmd_Flags(t *testing.T) {
	root := NewRootCmd()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"interval", "n", "2"},
		{"differences", "d", "false"},
		{"no-title", "t", "false"},
		{"truncate-title", "", "false"},
		{"shell", "", "bash"},
		{"preserve-invalid", "", "drop"},
		{"config", "c", ""},
		{"log-level", "", ""},
		{"log-file", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := root.Flags().Lookup(tt.name)
			if f == nil {
				t.Fatalf("flag --%s not registered", tt.name)
			}
			if f.Shorthand != tt.shorthand {
				t.Errorf("--%s shorthand = %q, want %q", tt.name, f.Shorthand, tt.shorthand)
			}
			if f.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.name, f.DefValue, tt.defValue)
			}
		})
	}
}

func TestRootCmd_RequiresCommand(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(NewRootCmd())
	if err == nil {
		t.Fatal("expected an error when no command is given")
	}
	if !strings.Contains(err.Error(), "requires at least 1 arg") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRootCmd_BlankCommand(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(NewRootCmd(), "   ")
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want invalid input", err)
	}
}

func TestRootCmd_InvalidInterval(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(NewRootCmd(), "--interval=-1", "date")
	if err == nil {
		t.Fatal("expected a validation error for a negative interval")
	}
	if !strings.Contains(err.Error(), "watch.interval") {
		t.Errorf("error should name the field: %v", err)
	}
}

func TestRootCmd_InvalidConfigFile(t *testing.T) {
	isolateConfig(t)

	cfgFile := filepath.Join(t.TempDir(), "diffwatch.yaml")
	if err := os.WriteFile(cfgFile, []byte("display:\n  invalid_utf8: mangle\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	_, err := executeCommand(NewRootCmd(), "-c", cfgFile, "date")
	if err == nil || !strings.Contains(err.Error(), "display.invalid_utf8") {
		t.Errorf("error = %v, want invalid display.invalid_utf8", err)
	}
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	isolateConfig(t)

	_, err := executeCommand(NewRootCmd(), "--config", filepath.Join(t.TempDir(), "nope.yaml"), "date")
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("error = %v, want config read failure", err)
	}
}

func TestRootCmd_LaunchFailure(t *testing.T) {
	isolateConfig(t)

	out, err := executeCommand(NewRootCmd(), "--shell", "/nonexistent/bin/shell", "date")
	if !errors.Is(err, errors.ErrLaunchFailed) {
		t.Fatalf("error = %v, want launch failure", err)
	}
	if strings.Contains(out, "Every ") {
		t.Errorf("nothing should be drawn before the first launch: %q", out)
	}
	if strings.Contains(out, "Usage:") {
		t.Error("usage should not be printed for a launch failure")
	}
}

func TestRootCmd_Watch(t *testing.T) {
	requireSh(t)
	isolateConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := executeCommandContext(ctx, NewRootCmd(), "--shell", "sh", "-n", "0.05", "printf", "hi")
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil after cancel", err)
	}
	if !strings.Contains(out, "Every 0.05s: printf hi") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "\n\nhi\n") {
		t.Errorf("missing output in %q", out)
	}
}

func TestRootCmd_CommandFlagsPassThrough(t *testing.T) {
	requireSh(t)
	isolateConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := executeCommandContext(ctx, NewRootCmd(), "--shell", "sh", "-t", "echo", "-n", "x")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Contains(out, "Every ") {
		t.Errorf("header should be hidden with -t: %q", out)
	}
	if !strings.Contains(out, "x\n") {
		t.Errorf("command output missing: %q", out)
	}
}

func TestRootCmd_LogFile(t *testing.T) {
	requireSh(t)
	isolateConfig(t)

	logFile := filepath.Join(t.TempDir(), "logs", "diffwatch.log")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := executeCommandContext(ctx, NewRootCmd(),
		"--shell", "sh", "--log-file", logFile, "--log-level", "debug", "true")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"watch started"`) {
		t.Errorf("log file missing start entry: %s", data)
	}
	if !strings.Contains(string(data), `"command":"true"`) {
		t.Errorf("log entries should carry the command: %s", data)
	}
}

func TestBindFlags_MissingFlagPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("bindFlags should panic when a bound flag does not exist")
		}
	}()

	bindFlags(viper.New(), pflag.NewFlagSet("empty", pflag.ContinueOnError))
}

func TestInvalidUTF8Flag(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"true", "preserve", false},
		{"1", "preserve", false},
		{"false", "drop", false},
		{"maybe", "drop", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := invalidUTF8Flag("drop")
			err := f.Set(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if f.String() != tt.want {
				t.Errorf("Set(%q) mode = %q, want %q", tt.input, f.String(), tt.want)
			}
		})
	}
}

func TestRootCmd_InvalidUTF8Precedence(t *testing.T) {
	requireSh(t)

	cfgFile := filepath.Join(t.TempDir(), "diffwatch.yaml")
	if err := os.WriteFile(cfgFile, []byte("display:\n  invalid_utf8: drop\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name         string
		env          string
		args         []string
		wantReplaced bool
	}{
		{"default drops", "", nil, false},
		{"env preserves", "preserve", nil, true},
		{"flag preserves over file", "", []string{"-c", cfgFile, "--preserve-invalid"}, true},
		{"flag drops over env", "preserve", []string{"--preserve-invalid=false"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			if tt.env != "" {
				t.Setenv("DIFFWATCH_DISPLAY_INVALID_UTF8", tt.env)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
			defer cancel()

			args := append([]string{"--shell", "sh"}, tt.args...)
			args = append(args, `printf 'a\377'`)
			out, err := executeCommandContext(ctx, NewRootCmd(), args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got := strings.Contains(out, "a\uFFFD"); got != tt.wantReplaced {
				t.Errorf("replacement shown = %v, want %v; output %q", got, tt.wantReplaced, out)
			}
		})
	}
}

func TestRootCmd_TruncateTitleNeedsTerminal(t *testing.T) {
	requireSh(t)
	isolateConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	command := "echo " + strings.Repeat("x", 300)
	out, err := executeCommandContext(ctx, NewRootCmd(), "--shell", "sh", "--truncate-title", command)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Every 2s: "+command+"\n") {
		t.Errorf("header must stay exact when output is not a terminal: %q", out)
	}
}

func TestRootCmd_LogFileUnwritable(t *testing.T) {
	isolateConfig(t)

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	_, err := executeCommand(NewRootCmd(), "--log-file", filepath.Join(blocker, "sub", "diffwatch.log"), "date")
	if err == nil || !strings.Contains(err.Error(), "failed to create logger for") {
		t.Errorf("error = %v, want logger creation failure", err)
	}
}
