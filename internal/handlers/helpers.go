package handlers

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// error payloads shown to the client; originals are only logged
const (
	msgInvalidID        = "Invalid task id."
	msgInvalidIntent    = "Invalid action intent."
	msgDeleteNotFound   = "Task not found or already deleted."
	msgUpdateNotFound   = "Task not found."
	msgCreateFailed     = "Failed to create task. Please try again."
	msgUpdateFailed     = "Failed to update task. Please try again."
	msgDeleteFailed     = "Failed to delete task. Please try again."
	msgValidationFailed = "Validation failed."
	msgTodoNotFound     = "Todo not found"
	msgInternal         = "Internal Server Error"
)

const (
	intentUpdate = "UPDATE"
	intentDelete = "DELETE"
)

var taskIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

// wantsJSON: Accept header asks for JSON, or ?format=json.
func wantsJSON(c *gin.Context) bool {
	if c.Query("format") == "json" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// isFragment marks requests from the form script that only want the suggestion panel.
func isFragment(c *gin.Context) bool {
	return c.GetHeader("X-Fragment") == "suggestions"
}

// withMarkers appends name=true flags in the given order.
func withMarkers(path string, markers ...string) string {
	if len(markers) == 0 {
		return path
	}
	parts := make([]string, 0, len(markers))
	for _, m := range markers {
		parts = append(parts, url.QueryEscape(m)+"=true")
	}
	return path + "?" + strings.Join(parts, "&")
}
