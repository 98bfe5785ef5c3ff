package api

import (
	"net/http"
	"strconv"

	"briefcast/types"

	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 20

// RegisterViewRoutes registers read-only state endpoints.
func (s *Server) RegisterViewRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.GET("/status", s.handleStatus)
	g.GET("/playlist", s.handlePlaylist)
	g.GET("/transcript", s.handleTranscript)
	g.POST("/transcript/:index/seek", s.handleTranscriptSeek)
	g.GET("/slideshow", s.handleSlideshow)
	g.GET("/history", s.handleHistory)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.View())
}

func (s *Server) handlePlaylist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"playlist": s.session.Playlist()})
}

func (s *Server) handleTranscript(c *gin.Context) {
	v := s.session.View()
	c.JSON(http.StatusOK, gin.H{
		"track_id":      v.Track.ID,
		"lines":         v.Lines,
		"active_line":   v.ActiveLine,
		"scroll_target": v.ScrollTarget,
	})
}

func (s *Server) handleTranscriptSeek(c *gin.Context) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	if err := s.session.ClickLine(i); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.Engine().State())
}

func (s *Server) handleSlideshow(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.View().Slide)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history is disabled"})
		return
	}
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	plays, err := s.history.Recent(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plays": plays})
}

func (s *Server) playlistItem(id string) (types.PlaylistItem, bool) {
	for _, item := range s.session.Playlist() {
		if item.ID == id {
			return item, true
		}
	}
	return types.PlaylistItem{}, false
}
