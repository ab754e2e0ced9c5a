package http

import "github.com/gin-gonic/gin"

// errorJSON writes the error body shape the device tolerates on every
// failing endpoint.
func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}
