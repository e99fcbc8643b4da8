package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/section"
)

const contactAck = "Message sent! (Demo only)"

func (s *Server) index(c *gin.Context) {
	pg := s.session(c)
	s.metrics.PageViews.Inc()
	s.render(c, http.StatusOK, "index.html", pg)
}

// toggleTheme answers HTMX with the re-rendered app and everyone else with a
// redirect back to the page.
func (s *Server) toggleTheme(c *gin.Context) {
	pg := s.session(c)
	mode := pg.ToggleTheme()
	s.metrics.ThemeToggles.WithLabelValues(mode.String()).Inc()
	s.log.Debug("theme toggled", zap.String("mode", mode.String()))

	if c.GetHeader("HX-Request") != "true" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.render(c, http.StatusOK, "app", pg)
}

// navigate is the script-free path to a section: a redirect to its anchor.
// Unknown sections go to the top of the page.
func (s *Server) navigate(c *gin.Context) {
	id, ok := section.Parse(c.Param("section"))
	if !ok {
		s.metrics.Navigations.WithLabelValues("ignored").Inc()
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	s.metrics.Navigations.WithLabelValues("anchor").Inc()
	c.Redirect(http.StatusSeeOther, "/#"+id.String())
}

// contact acknowledges the form without sending or storing anything.
func (s *Server) contact(c *gin.Context) {
	s.metrics.Contact.Inc()
	c.HTML(http.StatusOK, "contact-result", gin.H{"Message": contactAck})
}
