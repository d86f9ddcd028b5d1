package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/netscore/pkg/errors"
)

// fakeRegistries starts npm and GitHub stand-ins: app@1.0.0 (1 MB) depends
// on lib@^2.0.0, whose newest 2.x is 0.5 MB. app lives at acme/app.
func fakeRegistries(t *testing.T) (npmURL, githubURL string) {
	t.Helper()
	npm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/app":
			w.Write([]byte(`{"name":"app","dist-tags":{"latest":"1.0.0"},
				"repository":"github:acme/app",
				"versions":{"1.0.0":{"dependencies":{"lib":"^2.0.0"},"dist":{"unpackedSize":1000000}}}}`))
		case "/lib":
			w.Write([]byte(`{"name":"lib","dist-tags":{"latest":"2.1.0"},
				"versions":{"2.0.0":{"dist":{"unpackedSize":100}},"2.1.0":{"dist":{"unpackedSize":500000}}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(npm.Close)

	readme := base64.StdEncoding.EncodeToString(make([]byte, 6000))
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/app":
			w.Write([]byte(`{"name":"app","stargazers_count":10,"license":{"spdx_id":"MIT"}}`))
		case "/repos/acme/app/readme":
			json.NewEncoder(w).Encode(map[string]string{"content": readme, "encoding": "base64"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(gh.Close)

	return npm.URL, gh.URL
}

// writeConfig writes a TOML file using the in-memory cache and the fakes.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	npmURL, githubURL := fakeRegistries(t)
	body := fmt.Sprintf(`
[cache]
backend = "memory"

[registry]
npm_url = %q

[github]
base_url = %q
%s`, npmURL, githubURL, extra)

	path := filepath.Join(t.TempDir(), "netscore.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.Contains(out, "version:") || !strings.Contains(out, "commit:") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestScoreCommandNDJSON(t *testing.T) {
	cfg := writeConfig(t, "")
	out, err := execute(t, "--config", cfg, "score", "https://github.com/acme/app", "https://gitlab.com/x/y")
	if err != nil {
		t.Fatalf("score error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if first["URL"] != "https://github.com/acme/app" {
		t.Errorf("first URL = %v", first["URL"])
	}
	if first["License"] != 1.0 {
		t.Errorf("License = %v, want 1", first["License"])
	}
	if second["NetScore"] != 0.0 {
		t.Errorf("unsupported host NetScore = %v, want 0", second["NetScore"])
	}
}

func TestScoreCommandFile(t *testing.T) {
	cfg := writeConfig(t, "")
	list := filepath.Join(t.TempDir(), "urls.txt")
	content := "# repositories\n\nhttps://github.com/acme/app\n  https://www.npmjs.com/package/app  \n"
	if err := os.WriteFile(list, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfg, "score", "--file", list)
	if err != nil {
		t.Fatalf("score error: %v", err)
	}
	if n := strings.Count(strings.TrimSpace(out), "\n") + 1; n != 2 {
		t.Errorf("got %d records, want 2:\n%s", n, out)
	}
}

func TestScoreCommandErrors(t *testing.T) {
	cfg := writeConfig(t, "")
	if _, err := execute(t, "--config", cfg, "score"); err == nil {
		t.Error("expected error without URLs")
	}
	if _, err := execute(t, "--config", cfg, "score", "--format", "xml", "https://github.com/acme/app"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "score", "https://github.com/acme/app"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestReadURLsStdin(t *testing.T) {
	urls, err := readURLs("-", strings.NewReader("a\n#b\n\n c \n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 2 || urls[0] != "a" || urls[1] != "c" {
		t.Errorf("readURLs() = %q", urls)
	}
}

func TestCostCommandJSON(t *testing.T) {
	cfg := writeConfig(t, "")
	out, err := execute(t, "--config", cfg, "cost", "app", "1.0.0", "--deps", "--json")
	if err != nil {
		t.Fatalf("cost error: %v", err)
	}

	var rows []struct {
		Package        string  `json:"package"`
		StandaloneCost float64 `json:"standaloneCost"`
		TotalCost      float64 `json:"totalCost"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Package != "app@1.0.0" || rows[0].TotalCost != 1.5 {
		t.Errorf("root row = %+v, want app@1.0.0 total 1.5", rows[0])
	}
	if rows[1].Package != "lib@2.1.0" || rows[1].StandaloneCost != 0.5 {
		t.Errorf("dependency row = %+v, want lib@2.1.0 standalone 0.5", rows[1])
	}
}

func TestCostCommandTable(t *testing.T) {
	cfg := writeConfig(t, "")
	out, err := execute(t, "--config", cfg, "cost", "app", "1.0.0")
	if err != nil {
		t.Fatalf("cost error: %v", err)
	}
	if !strings.Contains(out, "app@1.0.0") || !strings.Contains(out, "--deps") {
		t.Errorf("unexpected table output:\n%s", out)
	}
}

func TestCostCommandUnknownPackage(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := execute(t, "--config", cfg, "cost", "missing", "1.0.0")
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("error = %v, want PACKAGE_NOT_FOUND", err)
	}
	if _, err := execute(t, "--config", cfg, "cost", "app"); err == nil {
		t.Error("expected usage error with one argument")
	}
}
