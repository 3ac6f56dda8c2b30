package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes and validates the body, answering 422 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return false
	}
	return true
}
