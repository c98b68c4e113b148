// internal/resolve/cache_test.go
package resolve

import "testing"

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache()

	if _, ok := c.Get("ep-1"); ok {
		t.Fatal("empty cache reported a hit")
	}

	c.Set("ep-1", []byte(`{"a":1}`))
	got, ok := c.Get("ep-1")
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("got %q", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache()
	c.Set("ep-1", []byte(`1`))
	c.Set("ep-2", []byte(`2`))

	c.Invalidate("ep-1")
	if _, ok := c.Get("ep-1"); ok {
		t.Fatal("invalidated entry still cached")
	}
	if _, ok := c.Get("ep-2"); !ok {
		t.Fatal("unrelated entry was evicted")
	}

	c.InvalidateAll()
	if _, ok := c.Get("ep-2"); ok {
		t.Fatal("entry survived InvalidateAll")
	}
}
