package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stake-plus/groupgov/src/governance"
	"github.com/stake-plus/groupgov/src/moderation"
	"github.com/stake-plus/groupgov/src/types"
)

// Proposals serves the governance routes. Every mutation goes through
// the engine so the web surface and the bot share one rulebook.
type Proposals struct {
	engine *governance.Engine
	roster governance.RosterProvider
}

func NewProposals(engine *governance.Engine, roster governance.RosterProvider) Proposals {
	return Proposals{engine: engine, roster: roster}
}

func (h Proposals) List(c *gin.Context) {
	open, err := h.engine.Pending(c, c.Param("group"))
	if err != nil {
		writeError(c, err)
		return
	}
	// Ballots stay secret; the listing exposes lifecycle data only.
	out := make([]gin.H, 0, len(open))
	for _, p := range open {
		out = append(out, gin.H{
			"id":        p.ID,
			"category":  p.Category,
			"target":    p.Target,
			"value":     p.Value,
			"proposer":  p.ProposerID,
			"createdAt": p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h Proposals) Create(c *gin.Context) {
	var req struct {
		GroupID  string `json:"groupId" binding:"required"`
		Category string `json:"category" binding:"required"`
		Target   string `json:"target" binding:"required"`
		Value    string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	uid := c.GetString("uid")
	roster, err := h.roster.Roster(c, req.GroupID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "temporarily unavailable"})
		return
	}
	if _, ok := roster.Eligible()[uid]; !ok {
		c.JSON(http.StatusForbidden, gin.H{"err": "administrators only"})
		return
	}
	if req.Category == types.CategoryConfig && moderation.IsSensitive(req.Target) && uid != roster.OwnerID {
		c.JSON(http.StatusForbidden, gin.H{"err": "owner only for this setting"})
		return
	}

	id, err := h.engine.Propose(c, req.GroupID, uid, req.Category, req.Target, req.Value)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h Proposals) Vote(c *gin.Context) {
	var req struct {
		Proposal string `json:"proposalId" binding:"required"`
		Choice   string `json:"choice" binding:"required,oneof=yes no"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := h.engine.CastBallot(c, req.Proposal, c.GetString("uid"), req.Choice); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h Proposals) Cancel(c *gin.Context) {
	if err := h.engine.Cancel(c, c.Param("id"), c.GetString("uid")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Blacklist serves the read-only blacklist view.
type Blacklist struct {
	words *moderation.Blacklist
}

func NewBlacklist(db *gorm.DB) Blacklist {
	return Blacklist{words: moderation.NewBlacklist(db)}
}

func (h Blacklist) List(c *gin.Context) {
	words, err := h.words.Words(c, c.Param("group"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"words": words})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, governance.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
	case errors.Is(err, governance.ErrClosed), errors.Is(err, governance.ErrExpired):
		c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	case errors.Is(err, governance.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"err": "not allowed"})
	case errors.Is(err, governance.ErrCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"err": "reminder cooldown active"})
	case governance.IsRetryable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "temporarily unavailable"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	}
}
