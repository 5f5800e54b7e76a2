package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/config"
)

// The last batch report ID lives in the encrypted session cookie and is
// shown on the dashboard when the client sends the cookie back.
func TestSessionRemembersLastReport(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, uploadRequest(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	match := reportLink.FindStringSubmatch(body)
	require.Len(t, match, 2)

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies, "batch upload should set the session cookie")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, body = do(t, srv, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Last batch")
	assert.Contains(t, body, "3 rows, 1 flagged")
	assert.Contains(t, body, "/reports/"+match[1]+".csv")

	// A second request with the same cookies still finds the session.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	_, body = do(t, srv, req)
	assert.Contains(t, body, "Last batch")
}

func TestSessionTamperedCookie(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "bm90LWVuY3J5cHRlZA=="})

	resp, body := do(t, srv, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "Last batch")
}

func TestRateLimiter(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.RateLimitPerMinute = 2 })

	for i := 0; i < 2; i++ {
		resp, _ := do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
	}

	resp, body := do(t, srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, body, "Rate limit exceeded")

	for i := 0; i < 3; i++ {
		resp, _ := do(t, srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode, "probes are exempt")
	}
}

func TestDeriveEncryptionKey(t *testing.T) {
	a := deriveEncryptionKey("secret-one")
	assert.Equal(t, a, deriveEncryptionKey("secret-one"))
	assert.NotEqual(t, a, deriveEncryptionKey("secret-two"))
	assert.Len(t, a, 44, "base64 of 32 bytes")
}

func TestBuildTLSConfig(t *testing.T) {
	t.Run("without CA", func(t *testing.T) {
		tc, err := buildTLSConfig(&config.Config{})
		require.NoError(t, err)
		assert.Nil(t, tc.ClientCAs)
	})

	t.Run("missing CA file", func(t *testing.T) {
		_, err := buildTLSConfig(&config.Config{TLSCAFile: filepath.Join(t.TempDir(), "absent.pem")})
		assert.Error(t, err)
	})

	t.Run("invalid CA file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))
		_, err := buildTLSConfig(&config.Config{TLSCAFile: path})
		assert.ErrorContains(t, err, "parse CA certificate")
	})
}
