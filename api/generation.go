package api

import (
	"net/http"
	"strings"

	"briefcast/config"
	"briefcast/coordinator"
	"briefcast/types"

	"github.com/gin-gonic/gin"
)

// RegisterGenerationRoutes registers generation and account endpoints.
func (s *Server) RegisterGenerationRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.POST("/generate", s.handleGenerate)
	g.POST("/user", s.handleUser)
	g.POST("/refresh", s.handleRefresh)
	g.DELETE("/notifications/:id", s.handleDismiss)
	g.POST("/regenerate", s.handleRegenerate)
	g.PUT("/premium", s.handlePremium)
	g.POST("/video", s.handleVideo)
}

// GenerateRequest names exactly one content source.
type GenerateRequest struct {
	ID       string   `json:"id" binding:"required"`
	Title    string   `json:"title" binding:"required"`
	Text     string   `json:"text"`
	URLs     []string `json:"urls"`
	Personal bool     `json:"personal"`
}

func (r GenerateRequest) source() types.ContentSource {
	switch {
	case r.Personal:
		return types.ContentSource{Kind: types.SourcePersonal}
	case len(r.URLs) > 0:
		return types.ContentSource{Kind: types.SourceURLs, URLs: r.URLs}
	case strings.TrimSpace(r.Text) != "":
		return types.ContentSource{Kind: types.SourceText, Text: r.Text}
	}
	return types.ContentSource{}
}

type UserRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PremiumRequest struct {
	Premium *bool `json:"premium" binding:"required"`
}

type VideoRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary" binding:"required"`
}

// handleGenerate starts a generation and returns 202 Accepted immediately.
func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src := req.source()
	if src.IsZero() {
		respondError(c, coordinator.ErrNoSource)
		return
	}
	if err := s.session.Coordinator().RequestGeneration(req.ID, req.Title, src); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "generation started", "id": req.ID})
}

func (s *Server) handleUser(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.session.SwitchUser(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "user": req.Email})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": req.Email})
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.session.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"playlist": s.session.Playlist()})
}

func (s *Server) handleDismiss(c *gin.Context) {
	if !s.session.Coordinator().Dismiss(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such notification"})
		return
	}
	c.Status(http.StatusNoContent)
}

// handleRegenerate discards today's cached briefing and starts a new one.
func (s *Server) handleRegenerate(c *gin.Context) {
	if err := s.session.RegenerateToday(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "generation started", "id": config.TodaysBriefingID})
}

func (s *Server) handlePremium(c *gin.Context) {
	var req PremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.session.SetPremium(*req.Premium); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"premium": *req.Premium})
}

// handleVideo renders a video briefing synchronously and returns its locator.
func (s *Server) handleVideo(c *gin.Context) {
	var req VideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h, err := s.session.RenderVideo(c.Request.Context(), req.Title, req.Summary)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.URL})
}
