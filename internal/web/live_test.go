package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/layout"
	"github.com/Zachkp/portfolio/internal/page"
	"github.com/Zachkp/portfolio/internal/section"
)

var heights = map[section.ID]float64{
	section.Hero:       800,
	section.About:      600,
	section.Experience: 1200,
	section.Projects:   1000,
	section.Skills:     700,
	section.Education:  500,
	section.Contact:    700,
}

func browserLayout(p *content.Portfolio) []layout.Region {
	tops := make(map[section.ID]float64)
	var out []layout.Region
	y := 0.0
	for _, id := range section.All() {
		tops[id] = y
		out = append(out, layout.Region{ID: string(id), Top: y, Height: heights[id]})
		y += heights[id]
	}
	for _, r := range page.Regions(p) {
		out = append(out, layout.Region{ID: r.ID, Top: tops[r.Section] + 100, Height: 200})
	}
	return out
}

type liveClient struct {
	t    *testing.T
	conn *websocket.Conn
	seen []liveOut
}

func dialLive(t *testing.T, srv *httptest.Server, cookie *http.Cookie) (*liveClient, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	header := http.Header{}
	if cookie != nil {
		header.Set("Cookie", cookie.Name+"="+cookie.Value)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, resp, err
	}
	t.Cleanup(func() { conn.Close() })
	return &liveClient{t: t, conn: conn}, resp, nil
}

func (c *liveClient) send(msg liveIn) {
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// waitFor returns the first message match accepts, looking at messages
// already received before reading more. Reveals and active changes are not
// ordered with respect to each other.
func (c *liveClient) waitFor(match func(liveOut) bool) liveOut {
	c.t.Helper()
	for i, m := range c.seen {
		if match(m) {
			c.seen = append(c.seen[:i], c.seen[i+1:]...)
			return m
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(c.t, c.conn.SetReadDeadline(deadline))
		var msg liveOut
		require.NoError(c.t, c.conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
		c.seen = append(c.seen, msg)
	}
}

func startLive(t *testing.T) (*Server, *liveClient, *http.Cookie) {
	t.Helper()
	s := newTestServer(t)
	_, client, cookie := openLive(t, s)
	return s, client, cookie
}

// openLive starts a session on s with a page load and connects one tab.
func openLive(t *testing.T, s *Server) (*httptest.Server, *liveClient, *http.Cookie) {
	t.Helper()
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	client, _, err := dialLive(t, srv, cookie)
	require.NoError(t, err)
	return srv, client, cookie
}

func TestLiveRevealsOnLayout(t *testing.T) {
	s, client, cookie := startLive(t)
	p := s.content

	client.send(liveIn{Type: "layout", Height: 800, Regions: browserLayout(p)})

	msg := client.waitFor(func(m liveOut) bool { return m.Type == "reveal" && m.Region == "hero-cta" })
	assert.Equal(t, int64(600), msg.Delay)

	pg, ok := s.store.Get(cookie.Value)
	require.True(t, ok)
	assert.Eventually(t, func() bool { return pg.Visible("hero-name") }, time.Second, 5*time.Millisecond)
	assert.False(t, pg.Visible("contact-form"))
}

func TestLiveNavigateAndSpy(t *testing.T) {
	s, client, _ := startLive(t)
	client.send(liveIn{Type: "layout", Height: 800, Regions: browserLayout(s.content)})

	client.send(liveIn{Type: "navigate", Section: "projects"})
	msg := client.waitFor(func(m liveOut) bool { return m.Type == "scroll" })
	assert.Equal(t, 2600.0, msg.Y)

	// The browser performs the scroll and reports where it landed.
	client.send(liveIn{Type: "scroll", Y: msg.Y})
	active := client.waitFor(func(m liveOut) bool { return m.Type == "active" })
	assert.Equal(t, "projects", active.Section)

	client.waitFor(func(m liveOut) bool { return m.Type == "reveal" && m.Region == "projects-0" })
}

func TestLiveIgnoresUnknownSection(t *testing.T) {
	s, client, cookie := startLive(t)
	client.send(liveIn{Type: "layout", Height: 800, Regions: browserLayout(s.content)})
	client.send(liveIn{Type: "navigate", Section: "blog"})
	client.send(liveIn{Type: "navigate", Section: "about"})

	msg := client.waitFor(func(m liveOut) bool { return m.Type == "scroll" })
	assert.Equal(t, 800.0, msg.Y, "only the known section scrolls")

	pg, _ := s.store.Get(cookie.Value)
	assert.Equal(t, section.Hero, pg.Active())
}

func TestLiveRequiresSession(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	_, resp, err := dialLive(t, srv, &http.Cookie{Name: sessionCookie, Value: "unknown"})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLiveConnectionKeepsSessionAlive(t *testing.T) {
	cfg := testConfig()
	cfg.SessionTTL = 50 * time.Millisecond
	s := newTestServerWith(t, cfg)
	_, client, _ := openLive(t, s)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, s.store.Sweep(), "a connected tab is not idle")

	client.send(liveIn{Type: "layout", Height: 800, Regions: browserLayout(s.content)})
	client.waitFor(func(m liveOut) bool { return m.Type == "reveal" && m.Region == "hero-cta" })

	require.NoError(t, client.conn.Close())
	assert.Eventually(t, func() bool {
		s.store.Sweep()
		return s.store.Len() == 0
	}, 2*time.Second, 20*time.Millisecond, "the session expires once the tab is gone")
}

func TestLiveScrollMovesToRemainingTab(t *testing.T) {
	s := newTestServer(t)
	srv, first, cookie := openLive(t, s)
	second, _, err := dialLive(t, srv, cookie)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(s.metrics.LiveConnections) == 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, first.conn.Close())
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(s.metrics.LiveConnections) == 1
	}, time.Second, 5*time.Millisecond)

	second.send(liveIn{Type: "layout", Height: 800, Regions: browserLayout(s.content)})
	second.send(liveIn{Type: "navigate", Section: "projects"})
	msg := second.waitFor(func(m liveOut) bool { return m.Type == "scroll" })
	assert.Equal(t, 2600.0, msg.Y)

	pg, ok := s.store.Get(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, section.Hero, pg.Active(), "the server waits for the tab to report its scroll")
}
