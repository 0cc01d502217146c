package controllers

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gem-enterprise/gemhub/bots"
)

const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxUpdateBytes = 1 << 20

// BotWebhook receives one Bot API update. The path carries the credential of the bot the
// update was sent to. Dispatch outcomes are always answered with 200 so the update is not
// redelivered.
func (ctl *Controller) BotWebhook(c *gin.Context) {
	if ctl.WebhookSecret != "" {
		got := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(ctl.WebhookSecret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUpdateBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update, err := bots.DecodeUpdate(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed update: " + err.Error()})
		return
	}

	res := ctl.Bots.Dispatch(c.Request.Context(), update, c.Param("credential"))
	ctl.countDispatch(c, res.Persona)
	c.JSON(http.StatusOK, res)
}

func (ctl *Controller) countDispatch(c *gin.Context, persona string) {
	if err := incrDispatch(c.Request.Context(), persona); err != nil {
		ctl.Logger.Warn("failed to count bot update", zap.String("persona", persona), zap.Error(err))
	}
}
