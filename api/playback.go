package api

import (
	"net/http"

	"briefcast/config"

	"github.com/gin-gonic/gin"
)

// RegisterPlaybackRoutes registers transport control endpoints.
func (s *Server) RegisterPlaybackRoutes(r *gin.Engine) {
	g := r.Group("/api")
	g.POST("/play", s.handlePlay)
	g.POST("/pause", s.handlePause)
	g.POST("/toggle", s.handleToggle)
	g.POST("/seek", s.handleSeek)
	g.POST("/skip", s.handleSkip)
	g.POST("/next", s.handleNext)
	g.POST("/previous", s.handlePrevious)
	g.POST("/rate", s.handleRate)
	g.POST("/volume", s.handleVolume)
}

// PlayRequest plays a URL, or a playlist item when URL is empty.
type PlayRequest struct {
	ID    string `json:"id" binding:"required"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type SeekRequest struct {
	Position *float64 `json:"position" binding:"required"`
}

type SkipRequest struct {
	Delta *float64 `json:"delta"`
}

type RateRequest struct {
	Rate *float64 `json:"rate"`
}

type VolumeRequest struct {
	Volume *float64 `json:"volume" binding:"required"`
}

func (s *Server) handlePlay(c *gin.Context) {
	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coord := s.session.Coordinator()

	var err error
	if req.URL != "" {
		err = coord.Play(req.ID, req.URL, req.Title, nil)
	} else if item, ok := s.playlistItem(req.ID); ok {
		err = s.session.PlayItem(item)
	} else {
		err = coord.Play(req.ID, "", req.Title, nil)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.View())
}

func (s *Server) handlePause(c *gin.Context) {
	s.session.Coordinator().Pause()
	c.JSON(http.StatusOK, s.session.View())
}

func (s *Server) handleToggle(c *gin.Context) {
	coord := s.session.Coordinator()
	coord.SetPlaying(!coord.IsPlaying())
	c.JSON(http.StatusOK, s.session.View())
}

func (s *Server) handleSeek(c *gin.Context) {
	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.Engine().Seek(*req.Position)
	c.JSON(http.StatusOK, s.session.Engine().State())
}

func (s *Server) handleSkip(c *gin.Context) {
	var req SkipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delta := float64(config.SkipSeconds)
	if req.Delta != nil {
		delta = *req.Delta
	}
	s.session.Engine().Skip(delta)
	c.JSON(http.StatusOK, s.session.Engine().State())
}

func (s *Server) handleNext(c *gin.Context) {
	if err := s.session.Coordinator().SkipNext(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.View())
}

func (s *Server) handlePrevious(c *gin.Context) {
	if err := s.session.Coordinator().SkipPrevious(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.session.View())
}

// handleRate cycles the speed, or snaps to the requested one.
func (s *Server) handleRate(c *gin.Context) {
	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var rate float64
	if req.Rate != nil {
		rate = s.session.Engine().SetPlaybackRate(*req.Rate)
	} else {
		rate = s.session.Engine().CyclePlaybackRate()
	}
	c.JSON(http.StatusOK, gin.H{"playback_rate": rate})
}

func (s *Server) handleVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.Engine().SetVolume(*req.Volume)
	c.JSON(http.StatusOK, s.session.Engine().State())
}
