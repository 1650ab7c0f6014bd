package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

type harness struct {
	t  *testing.T
	db string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, k := range []string{"TADA_CONFIG", "TADA_TRANSPORT", "TADA_ENDPOINT", "TADA_DB", "TADA_DEBUG", "TADA_TOKEN", "TADA_THEME"} {
		t.Setenv(k, "")
	}
	return &harness{t: t, db: filepath.Join(dir, "todos.json")}
}

// run executes tada against the harness database.
func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--db", h.db, "--no-color"}, args...)
	code := Execute(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	code, out, errOut := h.run(args...)
	if code != 0 {
		h.t.Fatalf("tada %v: exit %d\nstdout: %s\nstderr: %s", args, code, out, errOut)
	}
	return out
}

func TestAddListAndToggle(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Buy", "milk")
	h.mustRun("add", "Walk the dog")

	out := h.mustRun("ls")
	for _, want := range []string{"Buy milk", "Walk the dog", "2 items left"} {
		if !strings.Contains(out, want) {
			t.Fatalf("ls missing %q:\n%s", want, out)
		}
	}

	h.mustRun("done", "1")
	out = h.mustRun("ls")
	if !strings.Contains(out, "1 item left") {
		t.Fatalf("after done: %s", out)
	}

	out = h.mustRun("--filter", "completed", "ls")
	if !strings.Contains(out, "Buy milk") || strings.Contains(out, "Walk the dog") {
		t.Fatalf("completed filter: %s", out)
	}
	out = h.mustRun("--filter", "active", "ls")
	if strings.Contains(out, "Buy milk") || !strings.Contains(out, "Walk the dog") {
		t.Fatalf("active filter: %s", out)
	}
}

func TestIndexesFollowFilter(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "one")
	h.mustRun("add", "two")
	h.mustRun("add", "three")
	h.mustRun("done", "2")

	// "two" is the only completed item, so index 1 under the filter names it.
	h.mustRun("--filter", "completed", "rm", "1")
	out := h.mustRun("ls")
	if strings.Contains(out, "two") || !strings.Contains(out, "one") || !strings.Contains(out, "three") {
		t.Fatalf("rm under filter: %s", out)
	}
}

func TestEditRemoveClearToggleAll(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "draft")
	h.mustRun("add", "keep")

	h.mustRun("edit", "1", "final", "copy")
	out := h.mustRun("ls")
	if !strings.Contains(out, "final copy") || strings.Contains(out, "draft") {
		t.Fatalf("edit: %s", out)
	}

	h.mustRun("toggle-all")
	out = h.mustRun("ls")
	if !strings.Contains(out, "0 items left") {
		t.Fatalf("toggle-all on: %s", out)
	}
	h.mustRun("toggle-all")
	out = h.mustRun("ls")
	if !strings.Contains(out, "2 items left") {
		t.Fatalf("toggle-all off: %s", out)
	}

	out = h.mustRun("clear")
	if !strings.Contains(out, "nothing to clear") {
		t.Fatalf("clear with nothing done: %s", out)
	}
	h.mustRun("done", "2")
	h.mustRun("clear")
	out = h.mustRun("ls")
	if strings.Contains(out, "keep") || !strings.Contains(out, "final copy") {
		t.Fatalf("clear: %s", out)
	}

	h.mustRun("rm", "1")
	out = h.mustRun("ls")
	if !strings.Contains(out, "no items") {
		t.Fatalf("rm: %s", out)
	}
}

func TestGroupedListing(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "a")
	h.mustRun("add", "b")
	h.mustRun("done", "1")

	out := h.mustRun("ls", "--group")
	pending := strings.Index(out, "Pending")
	done := strings.Index(out, "Done")
	if pending < 0 || done < 0 || pending > done {
		t.Fatalf("group sections: %s", out)
	}
	if !strings.Contains(out[done:], " a") {
		t.Fatalf("done section should hold a: %s", out)
	}
}

func TestUsageErrorsExitTwo(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "only")

	cases := [][]string{
		{"done", "abc"},
		{"done", "5"},
		{"done"},
		{"edit", "1"},
		{"add"},
		{"nope"},
		{"--filter", "someday", "ls"},
		{"--transport", "carrier-pigeon", "ls"},
		{"ls", "--bogus"},
	}
	for _, args := range cases {
		code, _, errOut := h.run(args...)
		if code != 2 {
			t.Errorf("tada %v: exit %d, want 2 (stderr %q)", args, code, errOut)
		}
	}
}

func TestRuntimeErrorsExitOne(t *testing.T) {
	h := newHarness(t)
	code, _, errOut := h.run("--transport", "http", "--endpoint", "http://127.0.0.1:1", "ls")
	if code != 1 {
		t.Fatalf("unreachable host: exit %d, stderr %q", code, errOut)
	}
}

func TestAuthLoginStatusWhoami(t *testing.T) {
	h := newHarness(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	out := h.mustRun("auth", "login", token)
	if !strings.Contains(out, "logged in") {
		t.Fatalf("login: %s", out)
	}
	out = h.mustRun("auth", "status")
	if !strings.Contains(out, "source: file") || !strings.Contains(out, exp.UTC().Format(time.RFC3339)) {
		t.Fatalf("status: %s", out)
	}
	out = h.mustRun("auth", "whoami")
	if !strings.Contains(out, "sub: user-1") {
		t.Fatalf("whoami: %s", out)
	}
	out = h.mustRun("auth", "logout")
	if !strings.Contains(out, "logged out") {
		t.Fatalf("logout: %s", out)
	}
	out = h.mustRun("auth", "status")
	if !strings.Contains(out, "not logged in") {
		t.Fatalf("status after logout: %s", out)
	}
}
