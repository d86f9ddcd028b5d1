package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netscore/pkg/config"
	"github.com/matzehuels/netscore/pkg/cost"
	"github.com/matzehuels/netscore/pkg/errors"
	"github.com/matzehuels/netscore/pkg/score"
)

// fakeNPM serves two packages: app@1.0.0 depends on lib@^2.0.0.
func fakeNPM(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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
	t.Cleanup(srv.Close)
	return srv
}

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	readme := base64.StdEncoding.EncodeToString(make([]byte, 6000))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/app":
			w.Write([]byte(`{"name":"app","stargazers_count":10,"license":{"spdx_id":"MIT"}}`))
		case "/repos/acme/app/readme":
			json.NewEncoder(w).Encode(map[string]string{"content": readme, "encoding": "base64"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	cfg := config.Config{
		Cache:    config.CacheConfig{Backend: config.CacheMemory},
		Registry: config.RegistryConfig{NPMURL: fakeNPM(t).URL},
		GitHub:   config.GitHubConfig{BaseURL: fakeGitHub(t).URL},
	}.WithDefaults()

	logger := log.New(io.Discard)
	r, err := New(context.Background(), &cfg, logger)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { r.Close(context.Background()) })
	return r
}

func TestRunnerCost(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	id, entries, err := r.Costs.CostOf(ctx, "app", "1.0.0", true)
	if err != nil {
		t.Fatalf("CostOf() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %v, want app and lib", entries)
	}
	if got := entries[id]; got.StandaloneCost != 1 || got.TotalCost != 1.5 {
		t.Errorf("app entry = %+v, want standalone 1 total 1.5", got)
	}
	if got := entries[cost.NewID("lib", "2.1.0")]; got.TotalCost != 0.5 {
		t.Errorf("lib entry = %+v, want the newest 2.x", got)
	}

	if _, _, err := r.Costs.CostOf(ctx, "missing", "1.0.0", false); !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("CostOf(missing) error = %v, want PACKAGE_NOT_FOUND", err)
	}
}

func TestRunnerKeyPrefix(t *testing.T) {
	npmURL := fakeNPM(t).URL
	dir := t.TempDir()
	ctx := context.Background()

	open := func(prefix string) *Runner {
		cfg := config.Config{
			Cache:    config.CacheConfig{Backend: config.CacheFile, Dir: dir, KeyPrefix: prefix},
			Registry: config.RegistryConfig{NPMURL: npmURL},
			GitHub:   config.GitHubConfig{BaseURL: fakeGitHub(t).URL},
		}.WithDefaults()
		r, err := New(ctx, &cfg, log.New(io.Discard))
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		t.Cleanup(func() { r.Close(ctx) })
		return r
	}

	first := open("ci:")
	id, _, err := first.Costs.CostOf(ctx, "app", "1.0.0", true)
	if err != nil {
		t.Fatalf("CostOf() error: %v", err)
	}
	if _, hit, _ := first.Cache.Get(ctx, "ci:cost:"+id.String()); !hit {
		t.Error("cost record should be stored under the prefix")
	}
	if _, hit, _ := first.Cache.Get(ctx, "cost:"+id.String()); hit {
		t.Error("cost record should not be stored unprefixed")
	}

	// A later run with the same prefix knows the id without listing it.
	entries, err := open("ci:").Costs.Cost(ctx, id, true)
	if err != nil {
		t.Fatalf("Cost() in a new runner error: %v", err)
	}
	if got := entries[id]; got.TotalCost != 1.5 {
		t.Errorf("app entry = %+v, want total 1.5", got)
	}

	if _, err := open("other:").Costs.Cost(ctx, id, false); !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("Cost() under another prefix error = %v, want PACKAGE_NOT_FOUND", err)
	}
}

func TestRunnerScoreAll(t *testing.T) {
	r := newTestRunner(t)
	urls := []string{
		"https://www.npmjs.com/package/app",
		"https://gitlab.com/x/y",
		"https://github.com/acme/app",
	}

	records, err := r.ScoreAll(context.Background(), urls)
	if err != nil {
		t.Fatalf("ScoreAll() error: %v", err)
	}
	if len(records) != len(urls) {
		t.Fatalf("got %d records", len(records))
	}
	for i, rec := range records {
		if rec.URL != urls[i] {
			t.Errorf("records[%d].URL = %q, want input order", i, rec.URL)
		}
		if err := rec.Validate(); err != nil {
			t.Errorf("records[%d] invalid: %v", i, err)
		}
	}
	if records[1].NetScore != 0 {
		t.Errorf("unsupported host should score 0, got %v", records[1].NetScore)
	}
	if lic, _ := records[0].Metric(score.License); lic.Value != 1 {
		t.Errorf("License via npm URL = %v, want 1", lic.Value)
	}
	if records[2].NetScore <= 0 {
		t.Errorf("expected a positive score for acme/app")
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{config.CacheMemory, config.CacheNone, config.CacheFile} {
		c, err := NewCache(ctx, config.CacheConfig{Backend: backend, Dir: t.TempDir(), MemorySize: 10})
		if err != nil {
			t.Errorf("NewCache(%s) error: %v", backend, err)
			continue
		}
		c.Close()
	}
	if _, err := NewCache(ctx, config.CacheConfig{Backend: "tape"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}
