package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wikimark/wikimark/internal/model"
	"github.com/wikimark/wikimark/internal/resolver"
)

// noRedirectParam marks a back-navigation. Returning through browser history
// re-requests the result page with this parameter set, which keeps automatic
// navigation off so the user can pick a destination manually.
const noRedirectParam = "noredirect"

// handleResolve serves every request that no operational route claimed. A
// host without a token renders the landing page; everything else is resolved
// and rendered according to the navigation decision.
func (s *Server) handleResolve(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusMethodNotAllowed)
		return
	}

	token, ok := model.TokenFromHost(c.Request.Host, s.cfg.BaseDomain)
	if !ok {
		s.renderLanding(c)
		return
	}

	opts := resolver.Options{
		BackNavigation: c.Query(noRedirectParam) != "",
		Language:       s.languages.Negotiate(c.GetHeader("Accept-Language")),
	}

	// Query failures surface as OutcomeFailed on the resolution; the
	// resolver has already logged the cause.
	res, _ := s.resolver.Resolve(c.Request.Context(), token, opts)
	recordResolution(token.Kind().String(), res.Decision.Outcome.String(), res.Duration)

	switch res.Decision.Outcome {
	case resolver.OutcomeNavigate:
		if res.Decision.Delay <= 0 {
			c.Redirect(http.StatusFound, res.Decision.Target)
			return
		}
		s.renderResults(c, res)
	case resolver.OutcomeDisplay:
		s.renderResults(c, res)
	case resolver.OutcomeNotFound:
		s.renderStatus(c, http.StatusNotFound, res)
	default:
		s.renderStatus(c, http.StatusBadGateway, res)
	}
}

// renderResults renders the result page. For a delayed navigation the same
// page doubles as the interstitial: a meta refresh carries the redirect and
// the countdown bar visualizes the remaining time.
func (s *Server) renderResults(c *gin.Context, res *resolver.Resolution) {
	cards := entityCards(res.Entities.Entities(), s.cfg.BaseDomain)

	view := resultsView{
		Token:      res.Token.String(),
		Status:     res.StatusText(),
		Primary:    cards[0],
		BaseDomain: s.cfg.BaseDomain,
	}
	if len(cards) > 1 {
		view.More = cards[1:]
		view.MoreLabel = moreLabel(len(cards) - 1)
	}
	if res.Decision.Outcome == resolver.OutcomeNavigate {
		view.RefreshSeconds = refreshSeconds(res.Decision.Delay)
		view.RefreshTarget = res.Decision.Target
		view.StayLink = "?" + noRedirectParam + "=1"
	}

	c.HTML(http.StatusOK, "results.html", view)
}

// renderStatus renders the terminal not-found and failure pages.
func (s *Server) renderStatus(c *gin.Context, code int, res *resolver.Resolution) {
	c.HTML(code, "status.html", statusView{
		Token:      res.Token.String(),
		Status:     res.StatusText(),
		BaseDomain: s.cfg.BaseDomain,
	})
}

// renderLanding renders the landing page shown on the bare base domain and
// its www alias.
func (s *Server) renderLanding(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", landingView{BaseDomain: s.cfg.BaseDomain})
}

// handleHealthz reports liveness.
func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleFavicon answers the browser's automatic favicon probe with an empty
// response so it never reaches the resolver.
func (s *Server) handleFavicon(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
