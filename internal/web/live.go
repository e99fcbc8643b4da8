package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio/internal/layout"
	"github.com/Zachkp/portfolio/internal/mailbox"
	"github.com/Zachkp/portfolio/internal/page"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
	maxRegions     = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// liveIn is a browser report or request.
type liveIn struct {
	Type    string          `json:"type"`
	Height  float64         `json:"height,omitempty"`
	Doc     float64         `json:"doc,omitempty"`
	Regions []layout.Region `json:"regions,omitempty"`
	Y       float64         `json:"y,omitempty"`
	Section string          `json:"section,omitempty"`
}

// liveOut is a command for the browser.
type liveOut struct {
	Type    string  `json:"type"`
	Region  string  `json:"region,omitempty"`
	Delay   int64   `json:"delay,omitempty"`
	Section string  `json:"section,omitempty"`
	Theme   string  `json:"theme,omitempty"`
	Y       float64 `json:"y"`
}

func outFor(e page.Event) liveOut {
	switch e.Kind {
	case page.EventReveal:
		return liveOut{Type: "reveal", Region: e.Region, Delay: e.Delay.Milliseconds()}
	case page.EventActive:
		return liveOut{Type: "active", Section: e.Section.String()}
	default:
		return liveOut{Type: "theme", Theme: e.Theme.String()}
	}
}

// live bridges one browser tab to the visitor's page. The browser is the host
// rendering environment: it reports where regions are and how far it has
// scrolled, and performs the scrolls the navigator asks for.
func (s *Server) live(c *gin.Context) {
	id, _ := c.Cookie(sessionCookie)
	pg, release, ok := s.store.Hold(id)
	if !ok {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	defer release()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("live upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)
	s.metrics.LiveConnections.Inc()
	defer s.metrics.LiveConnections.Dec()

	out := mailbox.New[liveOut]()
	unsubscribe := pg.Subscribe(func(e page.Event) {
		out.Push(outFor(e))
	})
	releaseScroll := pg.ClaimRemoteScroll(func(_ context.Context, y float64) error {
		out.Push(liveOut{Type: "scroll", Y: y})
		return nil
	})

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range out.C() {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Debug("live write failed", zap.Error(err))
				conn.Close()
				return
			}
		}
	}()

	readerDone := make(chan struct{})
	go func() {
		select {
		case <-s.stopping:
			conn.Close()
		case <-readerDone:
		}
	}()

	s.readLive(c.Request.Context(), conn, pg)

	close(readerDone)
	unsubscribe()
	releaseScroll()
	out.Stop()
	<-writerDone
	conn.Close()
}

func (s *Server) readLive(ctx context.Context, conn *websocket.Conn, pg *page.Page) {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.LiveRate), s.cfg.LiveBurst)
	for {
		var msg liveIn
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("live read ended", zap.Error(err))
			}
			return
		}
		if !limiter.Allow() {
			s.metrics.LiveDropped.Inc()
			continue
		}
		s.dispatch(ctx, pg, msg)
	}
}

func (s *Server) dispatch(ctx context.Context, pg *page.Page, msg liveIn) {
	switch msg.Type {
	case "layout":
		if len(msg.Regions) > maxRegions {
			msg.Regions = msg.Regions[:maxRegions]
		}
		pg.ApplyLayout(msg.Height, msg.Doc, msg.Regions)
	case "scroll":
		pg.ApplyScroll(msg.Y)
	case "navigate":
		outcome := "ignored"
		if pg.NavigateTo(ctx, msg.Section) {
			outcome = "scrolled"
		}
		s.metrics.Navigations.WithLabelValues(outcome).Inc()
	default:
		s.metrics.LiveDropped.Inc()
		s.log.Debug("unknown live message", zap.String("type", msg.Type))
	}
}
