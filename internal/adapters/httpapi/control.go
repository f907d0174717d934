package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"argusBot/internal/ports"
)

// Controller changes how the live loop runs.
type Controller interface {
	Pause(ctx context.Context)
	Resume(ctx context.Context)
	UpdateRisk(ctx context.Context, riskPercent, rewardMultiple float64) error
}

// SetController enables the control routes.
func (s *Server) SetController(c Controller) {
	s.control = c
}

type riskRequest struct {
	RiskPercent    float64 `json:"risk_percent" binding:"required,gt=0,lt=100"`
	RewardMultiple float64 `json:"reward_multiple" binding:"required,gt=0"`
}

// requireAuth refuses control requests on an API without credentials.
func (s *Server) requireAuth(c *gin.Context) {
	if !s.authEnabled() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "run controls require HTTP credentials"})
		return
	}
	if s.control == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "run controls not available"})
		return
	}
	c.Next()
}

func (s *Server) handlePause(c *gin.Context) {
	s.control.Pause(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (s *Server) handleResume(c *gin.Context) {
	s.control.Resume(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

func (s *Server) handleRisk(c *gin.Context) {
	var req riskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.control.UpdateRisk(c.Request.Context(), req.RiskPercent, req.RewardMultiple); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ports.ErrConfigurationError) {
			code = http.StatusBadRequest
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk_percent": req.RiskPercent, "reward_multiple": req.RewardMultiple})
}
