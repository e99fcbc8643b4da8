package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/reveal"
	"github.com/Zachkp/portfolio/internal/theme"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() config.Config {
	return config.Config{
		Port:            "0",
		RevealThreshold: 0.1,
		SessionTTL:      time.Minute,
		LiveRate:        1000,
		LiveBurst:       1000,
		IPSalt:          "test",
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWith(t, testConfig())
}

func newTestServerWith(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	p, err := content.Default()
	require.NoError(t, err)
	s, err := New(cfg, p, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(s.store.CloseAll)
	return s
}

func do(r http.Handler, method, path string, cookie *http.Cookie, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestIndexRendersHiddenRegions(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := do(r, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionFrom(t, w)
	assert.True(t, cookie.HttpOnly)

	body := w.Body.String()
	assert.Contains(t, body, "Mohd Suhail")
	assert.Contains(t, body, `data-reveal="about-title"`)
	assert.Contains(t, body, reveal.HiddenClasses)
	assert.Contains(t, body, `transition-delay: 400ms`)
	assert.Contains(t, body, `/static/app.js`)
	assert.Contains(t, body, `aria-current="true">Home</a>`)
	assert.Equal(t, 1, s.store.Len())

	// The same cookie keeps the same session.
	w = do(r, http.MethodGet, "/", cookie, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 1, s.store.Len())
}

func TestThemeToggle(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()
	cookie := sessionFrom(t, do(r, http.MethodGet, "/", nil, nil))
	htmx := map[string]string{"HX-Request": "true"}

	w := do(r, http.MethodPost, "/theme", cookie, htmx)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(w.Body.String()), `<div id="app"`))
	assert.Contains(t, w.Body.String(), theme.Dark.Classes())

	w = do(r, http.MethodPost, "/theme", cookie, htmx)
	assert.Contains(t, w.Body.String(), theme.Light.Classes())

	w = do(r, http.MethodPost, "/theme", cookie, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	pg, ok := s.store.Get(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, theme.Dark, pg.Theme())
}

func TestNavigateFallback(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()

	w := do(r, http.MethodGet, "/navigate/projects", nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/#projects", w.Header().Get("Location"))

	w = do(r, http.MethodGet, "/navigate/blog", nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestContactIsAcknowledgedOnly(t *testing.T) {
	s := newTestServer(t)
	w := do(s.Router(), http.MethodPost, "/contact", nil, map[string]string{"HX-Request": "true"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), contactAck)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	r := s.Router()
	do(r, http.MethodGet, "/", nil, nil)

	w := do(r, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":1}`, w.Body.String())

	w = do(r, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portfolio_page_views_total 1")
}

func TestStaticAssets(t *testing.T) {
	s := newTestServer(t)
	w := do(s.Router(), http.MethodGet, "/static/style.css", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "html:not(.live)")
}

func TestExport(t *testing.T) {
	p, err := content.Default()
	require.NoError(t, err)
	dir := t.TempDir()

	require.NoError(t, Export(dir, p, theme.Dark, nil))

	index, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	html := string(index)
	assert.Contains(t, html, "Mohd Suhail")
	assert.NotContains(t, html, reveal.HiddenClasses, "export renders every region revealed")
	assert.NotContains(t, html, "app.js")
	assert.Contains(t, html, `href="static/style.css"`)
	assert.Contains(t, html, theme.Dark.Classes())

	_, err = os.Stat(filepath.Join(dir, "static", "app.js"))
	assert.NoError(t, err)
}
