package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gem-enterprise/gemhub/models"
)

func (ctl *Controller) GetPending(c *gin.Context) {
	category := models.Category(c.Query("category"))
	if category != "" {
		if _, ok := models.ParseCategory(string(category)); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
	}
	c.JSON(http.StatusOK, ctl.Aggregator.Pending(category))
}

func (ctl *Controller) GetApproved(c *gin.Context) {
	limit, err := queryInt(c, "limit", 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ctl.Aggregator.Approved(limit))
}

func (ctl *Controller) ApproveContent(c *gin.Context) {
	ctl.review(c, ctl.Aggregator.Approve, "approved")
}

func (ctl *Controller) RejectContent(c *gin.Context) {
	ctl.review(c, ctl.Aggregator.Reject, "rejected")
}

func (ctl *Controller) MarkPosted(c *gin.Context) {
	ctl.review(c, ctl.Aggregator.MarkPosted, "posted")
}

func (ctl *Controller) review(c *gin.Context, op func(string) bool, status string) {
	id := c.Param("id")
	if !op(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found", "id": id})
		return
	}
	ctl.invalidateNews(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

func (ctl *Controller) ExportContent(c *gin.Context) {
	status := models.ContentStatus(c.DefaultQuery("status", string(models.StatusApproved)))
	switch status {
	case models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusPosted:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}
	c.JSON(http.StatusOK, ctl.Aggregator.Export(status))
}

func (ctl *Controller) GetContentStats(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.Aggregator.Stats())
}

func (ctl *Controller) CustomizeContent(c *gin.Context) {
	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, ok := ctl.Orchestrator.Customize(c.Request.Context(), c.Param("id"), input.Text)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *Controller) ScheduleContent(c *gin.Context) {
	var input struct {
		At       time.Time `json:"at" binding:"required"`
		Channels []string  `json:"channels"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ctl.Orchestrator.Schedule(c.Param("id"), input.At, input.Channels) {
		c.JSON(http.StatusNotFound, gin.H{"error": "approved content not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "scheduled_at": input.At.UTC()})
}

func (ctl *Controller) GetSubmissions(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.Store.Submissions(models.SubmissionKind(c.Query("kind"))))
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
