package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codebaseshow/codebaseshow/internal/services"
)

// TaskHandler exposes the scheduled maintenance tasks for manual runs
type TaskHandler struct {
	schedulerService *services.SchedulerService
}

func NewTaskHandler(schedulerService *services.SchedulerService) *TaskHandler {
	return &TaskHandler{
		schedulerService: schedulerService,
	}
}

// RunHourly triggers the hourly GitHub data refresh batch
func (h *TaskHandler) RunHourly(c *gin.Context) {
	h.schedulerService.RunHourlyTasks(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// RunDaily triggers the daily maintenance sweep and public data backup
func (h *TaskHandler) RunDaily(c *gin.Context) {
	h.schedulerService.RunDailyTasks(c.Request.Context())
	c.Status(http.StatusNoContent)
}
