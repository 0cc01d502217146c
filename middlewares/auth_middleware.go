package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gem-enterprise/gemhub/global"
	"github.com/gem-enterprise/gemhub/models"
	"github.com/gem-enterprise/gemhub/utils"
)

// AuthMiddleware admits requests carrying a valid admin JWT. Admin routes are unavailable
// when no database is configured.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if global.DB == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin accounts require a database"})
			c.Abort()
			return
		}
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		username, err := utils.ParseJWT(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		var user models.User
		if err := global.DB.Where("username = ?", username).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		c.Set("username", username)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RegistrationGate lets anyone create the first operator account. Once an account exists,
// only authenticated operators may register more.
func RegistrationGate() gin.HandlerFunc {
	requireAuth := AuthMiddleware()
	return func(c *gin.Context) {
		if global.DB == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin accounts require a database"})
			c.Abort()
			return
		}
		var count int64
		if err := global.DB.WithContext(c.Request.Context()).Model(&models.User{}).Count(&count).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if count == 0 {
			c.Next()
			return
		}
		requireAuth(c)
	}
}
