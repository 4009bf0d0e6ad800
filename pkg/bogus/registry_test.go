package bogus

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterDefaultsToGET(t *testing.T) {
	r := NewRegistry()
	r.Register(Entry{Route: "/profile", Handler: Respond("Profile", 200)}, "")

	entries := r.Entries("GET")
	require.Len(t, entries, 1)
	assert.Equal(t, "/profile", entries[0].Route)
	assert.Nil(t, entries[0].Headers)
	assert.Empty(t, r.Entries("POST"))
}

func TestRegistry_MethodsAreSeparate(t *testing.T) {
	r := NewRegistry()
	r.Register(Entry{Route: "/profile", Handler: Respond("Profile", 200)}, "GET")
	r.Register(Entry{Route: "/register", Handler: Respond("Register", 200)}, "GET")
	r.Register(Entry{Route: "/register", Handler: Respond("Register", 200)}, "post")

	assert.Len(t, r.Entries("GET"), 2)
	assert.Len(t, r.Entries("POST"), 1)
	assert.Equal(t, []string{"GET", "POST"}, r.Methods())
	assert.Equal(t, 3, r.Len())

	_, ok := r.Lookup("POST", "/profile")
	assert.False(t, ok)
}

func TestRegistry_FirstMatchWins(t *testing.T) {
	r := NewRegistry()
	r.Register(Entry{Route: "/dup", Handler: Respond("first", 200)}, "GET")
	r.Register(Entry{Route: "/dup", Handler: Respond("second", 201)}, "GET")

	require.Len(t, r.Entries("GET"), 2)

	entry, ok := r.Lookup("GET", "/dup")
	require.True(t, ok)
	assert.Equal(t, Result{Body: "first", Status: 200}, entry.Handler())
}

func TestRegistry_LookupIsExact(t *testing.T) {
	r := NewRegistry()
	r.Register(Entry{Route: "/search", Handler: Respond("", 200)}, "GET")

	_, ok := r.Lookup("GET", "/search?q=1")
	assert.False(t, ok, "query strings are part of the path")

	_, ok = r.Lookup("GET", "/search/")
	assert.False(t, ok)

	_, ok = r.Lookup("get", "/search")
	assert.True(t, ok, "method lookup is case-insensitive")
}

func TestRegistry_HeadersAreCopied(t *testing.T) {
	headers := map[string]string{"Location": "/foo/bar"}
	r := NewRegistry()
	r.Register(Entry{Route: "/headers", Handler: Respond("", 201), Headers: headers}, "POST")

	headers["Location"] = "/changed"

	entry, ok := r.Lookup("POST", "/headers")
	require.True(t, ok)
	assert.Equal(t, "/foo/bar", entry.Headers["Location"])
}

func TestRegistry_EntriesReturnsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register(Entry{Route: "/a", Handler: Respond("", 200)}, "GET")

	entries := r.Entries("GET")
	entries[0].Route = "/mutated"

	_, ok := r.Lookup("GET", "/a")
	assert.True(t, ok)
}

func TestRegistry_Reset(t *testing.T) {
	r := NewRegistry()
	r.Register(Entry{Route: "/a", Handler: Respond("", 200)}, "GET")
	r.Reset()

	assert.Zero(t, r.Len())
	assert.Empty(t, r.Methods())
	_, ok := r.Lookup("GET", "/a")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(Entry{Route: fmt.Sprintf("/r/%d", i), Handler: Respond("", 200)}, "GET")
		}(i)
		go func(i int) {
			defer wg.Done()
			r.Lookup("GET", fmt.Sprintf("/r/%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
}

func TestRegistry_Replace(t *testing.T) {
	r := NewRegistry()
	r.Register(Entry{Route: "/old", Handler: Respond("", 200)}, "GET")

	headers := map[string]string{"Location": "/x"}
	r.Replace(map[string][]Entry{
		"put": {
			{Route: "/x", Handler: Respond("", 204), Headers: headers},
			{Route: "/y", Handler: Respond("", 204)},
		},
	})
	headers["Location"] = "/mutated"

	_, ok := r.Lookup("GET", "/old")
	assert.False(t, ok)
	assert.Equal(t, []string{"PUT"}, r.Methods())

	entry, ok := r.Lookup("PUT", "/x")
	require.True(t, ok)
	assert.Equal(t, "/x", entry.Headers["Location"])
	assert.Equal(t, 2, r.Len())
}
