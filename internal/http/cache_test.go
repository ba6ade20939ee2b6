package handlers_test

import (
	"strings"
	"testing"
	"time"
)

func TestResponseCacheHitWithinTTL(t *testing.T) {
	env := newEnv(t)
	const target = "/api/estate/low_priced"

	first, body1 := env.get(t, target)
	if got := first.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("first request: want MISS, got %q", got)
	}

	// change the data underneath; a hit must not see it
	if _, err := env.db.Exec(`UPDATE estate SET rent = 1 WHERE id = 10`); err != nil {
		t.Fatal(err)
	}
	env.clock.Advance(59 * time.Second)
	second, body2 := env.get(t, target)
	if got := second.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("second request: want HIT, got %q", got)
	}
	if body1 != body2 {
		t.Fatal("cached body differs from original")
	}

	env.clock.Advance(2 * time.Second)
	third, body3 := env.get(t, target)
	if got := third.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("after ttl: want MISS, got %q", got)
	}
	if body3 == body1 {
		t.Fatal("expired entry should be recomputed")
	}
}

func TestResponseCacheKeyIgnoresParamOrder(t *testing.T) {
	env := newEnv(t)
	env.get(t, "/api/chair/search?priceRangeId=0&page=0&perPage=10")
	resp, _ := env.get(t, "/api/chair/search?perPage=10&page=0&priceRangeId=0")
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("want HIT, got %q", got)
	}
	resp, _ = env.get(t, "/api/chair/search?priceRangeId=1&page=0&perPage=10")
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Fatalf("different values must not collide, got %q", got)
	}
}

func TestResponseCacheSkipsErrorsAndPosts(t *testing.T) {
	env := newEnv(t)
	env.get(t, "/api/chair/999")
	if resp, _ := env.get(t, "/api/chair/999"); resp.Header.Get("X-Cache") == "HIT" {
		t.Fatal("404 must not be cached")
	}

	env.postJSON(t, "/api/chair/buy/1", `{}`)
	if env.store.Len() != 0 {
		t.Fatalf("POST must not write the cache, %d entries", env.store.Len())
	}
	resp, _ := env.postJSON(t, "/api/chair/buy/1", `{}`)
	if resp.Header.Get("X-Cache") != "" {
		t.Fatal("POST must bypass the cache entirely")
	}
}

func TestResponseCacheDisabledWithZeroTTL(t *testing.T) {
	cfg := testConfig()
	cfg.CacheTTL = 0
	env := newEnvWith(t, cfg)
	env.get(t, "/api/chair/low_priced")
	resp, _ := env.get(t, "/api/chair/low_priced")
	if resp.Header.Get("X-Cache") != "" || env.store.Len() != 0 {
		t.Fatal("cache should be disabled")
	}
}

func TestInitializePurgesCache(t *testing.T) {
	env := newEnv(t)
	env.get(t, "/api/chair/low_priced")
	if env.store.Len() == 0 {
		t.Fatal("expected a cached entry")
	}
	resp, body := env.postJSON(t, "/initialize", ``)
	if resp.StatusCode != 200 || body != `{"language":"go"}` {
		t.Fatalf("unexpected initialize response %d %s", resp.StatusCode, body)
	}
	if env.store.Len() != 0 {
		t.Fatal("initialize must purge the cache")
	}
}

func TestResponseCacheKeysSurviveLaterRequests(t *testing.T) {
	env := newEnv(t)
	env.get(t, "/api/chair/low_priced")
	env.get(t, "/api/estate/low_priced")

	resp, _ := env.get(t, "/api/chair/low_priced")
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("first path overwritten by the second request: X-Cache=%q", got)
	}
	resp, _ = env.get(t, "/api/estate/low_priced")
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Fatalf("want HIT, got %q", got)
	}
	if env.store.Len() != 2 {
		t.Fatalf("want 2 entries, got %d", env.store.Len())
	}
}

func TestBuyDropsCachedChair(t *testing.T) {
	env := newEnv(t)
	env.get(t, "/api/estate/low_priced")
	if resp, _ := env.get(t, "/api/chair/5"); resp.StatusCode != 200 {
		t.Fatalf("chair 5 should be for sale, got %d", resp.StatusCode)
	}
	if resp, _ := env.get(t, "/api/chair/5"); resp.Header.Get("X-Cache") != "HIT" {
		t.Fatal("chair detail should be cached")
	}

	if resp, body := env.postJSON(t, "/api/chair/buy/5", `{}`); resp.StatusCode != 200 {
		t.Fatalf("buy: %d %s", resp.StatusCode, body)
	}
	resp, _ := env.get(t, "/api/chair/5")
	if resp.StatusCode != 404 {
		t.Fatalf("sold out chair served from cache: %d %s", resp.StatusCode, resp.Header.Get("X-Cache"))
	}
	if resp, _ := env.get(t, "/api/estate/low_priced"); resp.Header.Get("X-Cache") != "HIT" {
		t.Fatal("unrelated entries should stay cached")
	}
}

func TestImportPurgesCache(t *testing.T) {
	env := newEnv(t)
	env.get(t, "/api/estate/low_priced")
	csv := "200,新築,説明,/images/estate/200.png,東京都,35.66,139.70,10000,200,100,,1000\n"
	if resp, body := upload(t, env, "/api/estate", "estates", csv); resp.StatusCode != 201 {
		t.Fatalf("import: %d %s", resp.StatusCode, body)
	}
	resp, body := env.get(t, "/api/estate/low_priced")
	if resp.Header.Get("X-Cache") != "MISS" || !strings.Contains(body, `"id":200`) {
		t.Fatalf("import should purge cached lists: %s %s", resp.Header.Get("X-Cache"), body)
	}
}
