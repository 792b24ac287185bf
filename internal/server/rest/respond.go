package rest

import (
	"github.com/gin-gonic/gin"
)

// respondMsg writes the {"msg": ...} body used by every endpoint except login.
func respondMsg(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"msg": msg})
}

// respondMessage writes the {"message": ...} body used by login.
func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func abortMsg(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"msg": msg})
}
