package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCapture(t *testing.T, args []string, stdin string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunExpression(t *testing.T) {
	code, out, errOut := runCapture(t, []string{"-e", "(log (rotvec 0 0 0))"}, "")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if strings.TrimSpace(out) != "(vec3 0 0 0)" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	code, out, errOut := runCapture(t, nil, "(kind (rotvec 1 0 0))")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if !strings.Contains(out, "rotation-vector") {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turn.rot")
	src := "; identity check\n(is-identity (inverse (quat 1 0 0 0)))\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	code, out, errOut := runCapture(t, []string{"-f", path}, "")
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, errOut)
	}
	if strings.TrimSpace(out) != "true" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunScriptError(t *testing.T) {
	code, out, errOut := runCapture(t, []string{"-e", "(quat 0 0 0 0)"}, "")
	if code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
	if errOut == "" {
		t.Error("expected the script error on stderr")
	}
}

func TestRunUsage(t *testing.T) {
	if code, _, _ := runCapture(t, []string{"-e", "1", "-f", "x"}, ""); code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
	if code, _, _ := runCapture(t, []string{"-nope"}, ""); code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
}

func TestRunMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.rot")
	if code, _, _ := runCapture(t, []string{"-f", path}, ""); code != 1 {
		t.Errorf("exit = %d, want 1", code)
	}
}
