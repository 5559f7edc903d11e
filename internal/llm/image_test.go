package llm

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePassesThroughDataURLs(t *testing.T) {
	resolver := NewImageResolver()

	dataURL := "data:image/jpeg;base64,aGVsbG8="
	resolved, err := resolver.Resolve(context.Background(), dataURL)
	require.NoError(t, err)
	assert.Equal(t, dataURL, resolved)
}

func TestResolveInlinesRemoteImages(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(payload) //nolint:errcheck
	}))
	defer srv.Close()

	resolver := NewImageResolver()
	resolved, err := resolver.Resolve(context.Background(), srv.URL+"/engine.png")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(payload), resolved)
}

func TestResolveRejectsUnsupportedSchemes(t *testing.T) {
	resolver := NewImageResolver()

	for _, ref := range []string{"ftp://example.com/a.png", "file:///etc/passwd", "not a url"} {
		_, err := resolver.Resolve(context.Background(), ref)
		assert.Error(t, err, "reference %q", ref)
	}
}

func TestResolveReportsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	resolver := NewImageResolver()
	_, err := resolver.Resolve(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestResolveRejectsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	}))
	defer srv.Close()

	resolver := NewImageResolver()
	_, err := resolver.Resolve(context.Background(), srv.URL+"/empty.png")
	assert.Error(t, err)
}
