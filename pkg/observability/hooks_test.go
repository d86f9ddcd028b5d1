package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopScoreHooks{}
	s.OnMetricComplete(ctx, "BusFactor", 0.5, time.Second, nil)
	s.OnScoreComplete(ctx, "https://github.com/a/b", 0.5, time.Second, nil)

	c := NoopCostHooks{}
	c.OnCostComplete(ctx, "id", 3, time.Second, nil)
	c.OnDependencyUnresolved(ctx, "left-pad", "^9")

	k := NoopCacheHooks{}
	k.OnCacheHit(ctx, "cost")
	k.OnCacheMiss(ctx, "cost")
	k.OnCacheSet(ctx, "cost", 1024)

	h := NoopHTTPHooks{}
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/express", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/express", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Score().(NoopScoreHooks); !ok {
		t.Error("Score() should return NoopScoreHooks by default")
	}
	if _, ok := Cost().(NoopCostHooks); !ok {
		t.Error("Cost() should return NoopCostHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	custom := &testScoreHooks{}
	SetScoreHooks(custom)
	if Score() != custom {
		t.Error("SetScoreHooks should set custom hooks")
	}

	customCost := &testCostHooks{}
	SetCostHooks(customCost)
	if Cost() != customCost {
		t.Error("SetCostHooks should set custom hooks")
	}

	Reset()
	if _, ok := Score().(NoopScoreHooks); !ok {
		t.Error("Reset() should restore NoopScoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testScoreHooks{}
	SetScoreHooks(custom)
	SetScoreHooks(nil)
	if Score() != custom {
		t.Error("SetScoreHooks(nil) should keep the registered hooks")
	}

	SetCostHooks(nil)
	SetCacheHooks(nil)
	SetHTTPHooks(nil)
	if _, ok := Cost().(NoopCostHooks); !ok {
		t.Error("SetCostHooks(nil) should keep the default")
	}
}

type testScoreHooks struct{ NoopScoreHooks }

type testCostHooks struct{ NoopCostHooks }
