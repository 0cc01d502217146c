package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gem-enterprise/gemhub/feeds"
)

func (ctl *Controller) RunWorkflow(c *gin.Context) {
	rep := ctl.Orchestrator.RunCycle(c.Request.Context())
	ctl.invalidateNews(c.Request.Context())
	c.JSON(http.StatusOK, rep)
}

// DrainQueue drains approved content; with publish=true the records are also delivered.
func (ctl *Controller) DrainQueue(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	publish := c.Query("publish") == "true"
	if publish && ctl.Publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing not configured"})
		return
	}
	records := ctl.Orchestrator.DrainPostingQueue(c.Request.Context(), limit)
	if publish {
		records = ctl.Publisher.Publish(c.Request.Context(), records)
	}
	ctl.invalidateNews(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (ctl *Controller) GetPosts(c *gin.Context) {
	if ctl.Posts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "post history requires a database"})
		return
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	records, err := ctl.Posts.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (ctl *Controller) GetFeeds(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.Aggregator.Sources())
}

func (ctl *Controller) AddFeed(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		URL      string `json:"url" binding:"required"`
		Category string `json:"category" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, err := ctl.Aggregator.AddSource(c.Request.Context(), input.Name, input.URL, input.Category)
	switch {
	case errors.Is(err, feeds.ErrUnknownCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, feeds.ErrDuplicateSource):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusCreated, src)
	}
}

// Announce sends one canned post (motivation, tip or market) to a named channel.
func (ctl *Controller) Announce(c *gin.Context) {
	if ctl.Publisher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "publishing not configured"})
		return
	}
	var input struct {
		Channel string `json:"channel" binding:"required"`
		Type    string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := ctl.Publisher.Announce(c.Request.Context(), input.Channel, input.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": input.Channel, "type": input.Type, "outcome": res.Outcome, "reason": res.Reason})
}

// SetFeedEnabled pauses or resumes polling of one source.
func (ctl *Controller) SetFeedEnabled(c *gin.Context) {
	var input struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, err := ctl.Aggregator.SetEnabled(c.Request.Context(), c.Param("name"), *input.Enabled)
	switch {
	case errors.Is(err, feeds.ErrUnknownSource):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, src)
	}
}
