package controllers

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	rss "github.com/gorilla/feeds"

	"github.com/gem-enterprise/gemhub/global"
	"github.com/gem-enterprise/gemhub/models"
)

const newsLimit = 50

type newsItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	URL       string          `json:"url"`
	Source    string          `json:"source"`
	Category  models.Category `json:"category"`
	Published time.Time       `json:"published"`
}

// publishedNews returns approved and posted items, newest first.
func (ctl *Controller) publishedNews() []newsItem {
	items := append(ctl.Store.ByStatus(models.StatusApproved), ctl.Store.ByStatus(models.StatusPosted)...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published.After(items[j].Published)
	})
	if len(items) > newsLimit {
		items = items[:newsLimit]
	}
	out := make([]newsItem, 0, len(items))
	for _, it := range items {
		summary := it.Summary
		if summary == "" {
			summary = it.Description
		}
		out = append(out, newsItem{
			ID:        it.ID,
			Title:     it.Title,
			Summary:   summary,
			URL:       it.URL,
			Source:    it.Source,
			Category:  it.Category,
			Published: it.Published,
		})
	}
	return out
}

// GetNews lists curated items. The list is cached for ten minutes when redis is configured.
func (ctl *Controller) GetNews(c *gin.Context) {
	ctx := c.Request.Context()
	if global.RedisDB == nil {
		c.JSON(http.StatusOK, ctl.publishedNews())
		return
	}

	var news []newsItem
	if cachedData, err := global.RedisDB.Get(ctx, newsCacheKey).Result(); err == nil {
		if err := json.Unmarshal([]byte(cachedData), &news); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	} else if err == redis.Nil {
		news = ctl.publishedNews()
		newsJSON, err := json.Marshal(news)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := global.RedisDB.Set(ctx, newsCacheKey, newsJSON, newsCacheTTL).Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, news)
}

// GetFeedXML renders the curated items as an RSS 2.0 document.
func (ctl *Controller) GetFeedXML(c *gin.Context) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	feed := &rss.Feed{
		Title:       "GEM Enterprise Curated News",
		Link:        &rss.Link{Href: scheme + "://" + c.Request.Host + "/feed.xml"},
		Description: "Cybersecurity, financial and real estate news reviewed by GEM Enterprise",
		Created:     time.Now().UTC(),
	}
	for _, it := range ctl.publishedNews() {
		feed.Items = append(feed.Items, &rss.Item{
			Id:          it.ID,
			Title:       it.Title,
			Link:        &rss.Link{Href: it.URL},
			Description: it.Summary,
			Author:      &rss.Author{Name: it.Source},
			Created:     it.Published,
		})
	}

	doc, err := feed.ToRss()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(doc))
}
