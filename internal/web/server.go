// Package web serves the portfolio: the page itself, the HTMX endpoints for
// the theme toggle and contact placeholder, and the live bridge that keeps the
// server's view of each visitor's viewport in step with the browser.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/layout"
	"github.com/Zachkp/portfolio/internal/logging"
	"github.com/Zachkp/portfolio/internal/metrics"
	"github.com/Zachkp/portfolio/internal/page"
	"github.com/Zachkp/portfolio/internal/session"
)

const (
	sessionCookie   = "portfolio_session"
	shutdownTimeout = 5 * time.Second
)

// Server wires the routes to the session store.
type Server struct {
	cfg     config.Config
	content *content.Portfolio
	log     *zap.Logger
	tmpl    *template.Template
	store   *session.Store
	metrics *metrics.Metrics
	anon    *logging.Anonymizer

	stopOnce sync.Once
	stopping chan struct{}
}

// New builds a server for p.
func New(cfg config.Config, p *content.Portfolio, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t, err := ParseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		content:  p,
		log:      log,
		tmpl:     t,
		anon:     logging.NewAnonymizer(cfg.IPSalt),
		stopping: make(chan struct{}),
	}
	s.store = session.NewStore(s.newPage, cfg.SessionTTL, log)
	s.metrics = metrics.New(s.store.Len)
	return s, nil
}

func (s *Server) newPage() *page.Page {
	pg := page.New(s.content, page.Options{
		Threshold: s.cfg.RevealThreshold,
		Viewport:  []layout.Option{layout.WithStepInterval(s.cfg.ScrollStep)},
		Logger:    s.log,
	})
	pg.Subscribe(func(e page.Event) {
		switch e.Kind {
		case page.EventReveal:
			s.metrics.Reveals.Inc()
		case page.EventActive:
			s.metrics.ActiveChanges.WithLabelValues(e.Section.String()).Inc()
		}
	})
	return pg
}

// Router returns the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(logging.Recovery(s.log), logging.Middleware(s.log, s.anon))
	r.SetHTMLTemplate(s.tmpl)

	r.StaticFS("/static", http.FS(StaticFS()))

	r.GET("/", s.index)
	r.POST("/theme", s.toggleTheme)
	r.GET("/navigate/:section", s.navigate)
	r.POST("/contact", s.contact)
	r.GET("/live", s.live)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	return r
}

// Run serves until ctx is done, then shuts the listener, live connections
// and sessions down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.stopLive)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.store.Run(ctx)
	})
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) stopLive() {
	s.stopOnce.Do(func() { close(s.stopping) })
}

// session returns the visitor's page, starting a session when the cookie is
// missing or stale.
func (s *Server) session(c *gin.Context) *page.Page {
	id, _ := c.Cookie(sessionCookie)
	newID, pg, created := s.store.GetOrCreate(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, newID, int(s.cfg.SessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	}
	return pg
}

func (s *Server) render(c *gin.Context, status int, name string, pg *page.Page) {
	c.HTML(status, name, renderData{View: pg.View(), Live: true, StaticPrefix: "/static/"})
}
