package security

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jellydator/ttlcache/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPwnedClient(baseURL string) *PwnedClient {
	cache := ttlcache.NewCache()
	cache.SkipTTLExtensionOnHit(true)

	return &PwnedClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: time.Second},
		cache:   cache,
	}
}

func hashParts(p string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(p))
	h := strings.ToUpper(hex.EncodeToString(sum[:]))
	return h[:5], h[5:]
}

func TestCheckLeakedMatch(t *testing.T) {
	prefix, suffix := hashParts("password123")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/range/"+prefix, r.URL.Path)

		fmt.Fprintf(w, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA:12\n%s:50000\nBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB:3\n", suffix)
	}))
	defer srv.Close()

	leaked, count := testPwnedClient(srv.URL).CheckLeaked(context.Background(), "password123")
	assert.True(t, leaked)
	assert.Equal(t, 50000, count)
}

func TestCheckLeakedNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA:12\n")
	}))
	defer srv.Close()

	leaked, count := testPwnedClient(srv.URL).CheckLeaked(context.Background(), "s0me-Unique-passphrase!")
	assert.False(t, leaked)
	assert.Zero(t, count)
}

func TestCheckLeakedCRLF(t *testing.T) {
	_, suffix := hashParts("password123")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA:12\r\n%s:7\r\n", suffix)
	}))
	defer srv.Close()

	leaked, count := testPwnedClient(srv.URL).CheckLeaked(context.Background(), "password123")
	assert.True(t, leaked)
	assert.Equal(t, 7, count)
}

func TestCheckLeakedLowercaseSuffix(t *testing.T) {
	_, suffix := hashParts("password123")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s:42\n", strings.ToLower(suffix))
	}))
	defer srv.Close()

	leaked, count := testPwnedClient(srv.URL).CheckLeaked(context.Background(), "password123")
	assert.True(t, leaked)
	assert.Equal(t, 42, count)
}

func TestCheckLeakedFailsOpenOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	leaked, count := testPwnedClient(srv.URL).CheckLeaked(context.Background(), "password123")
	assert.False(t, leaked)
	assert.Zero(t, count)
}

func TestCheckLeakedFailsOpenOnConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	leaked, count := testPwnedClient(srv.URL).CheckLeaked(context.Background(), "password123")
	assert.False(t, leaked)
	assert.Zero(t, count)
}

func TestCheckLeakedCachesRange(t *testing.T) {
	_, suffix := hashParts("password123")
	var hits int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, "%s:5\n", suffix)
	}))
	defer srv.Close()

	pc := testPwnedClient(srv.URL)

	for i := 0; i < 3; i++ {
		leaked, _ := pc.CheckLeaked(context.Background(), "password123")
		assert.True(t, leaked)
	}

	assert.Equal(t, 1, hits)
}
