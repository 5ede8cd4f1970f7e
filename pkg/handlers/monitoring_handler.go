package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sales-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// maxLogPeriodHours is the longest window the dashboard aggregates.
const maxLogPeriodHours = 7 * 24

// MonitoringHandler はモニタリング関連の操作のハンドラです。
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// GetLogs は集計されたログデータを返します。
// period is "<n>h" or "<n>d" (default "24h"), at most seven days.
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	period := c.DefaultQuery("period", "24h")
	hours, err := parseLogPeriod(period)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"period":  period,
		"data":    h.Service.GetDashboardData(hours),
	})
}

// parseLogPeriod converts a period such as "12h" or "7d" to hours.
func parseLogPeriod(period string) (int, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if len(period) < 2 {
		return 0, fmt.Errorf("invalid period %q: use <n>h or <n>d", period)
	}

	n, err := strconv.Atoi(period[:len(period)-1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid period %q: use <n>h or <n>d", period)
	}

	var hours int
	switch period[len(period)-1] {
	case 'h':
		hours = n
	case 'd':
		hours = n * 24
	default:
		return 0, fmt.Errorf("invalid period %q: use <n>h or <n>d", period)
	}

	if hours > maxLogPeriodHours {
		return 0, fmt.Errorf("period %q exceeds %d hours", period, maxLogPeriodHours)
	}
	return hours, nil
}
