package services

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultMaxLogEntries bounds the in-memory request log.
const defaultMaxLogEntries = 10000

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService はAPIのモニタリング機能を提供します。
type MonitoringService struct {
	logs       []LogEntry
	mu         sync.RWMutex
	maxEntries int
	location   *time.Location
	skipPaths  []string
	now        func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
// location is used for the hourly buckets; nil means UTC.
func NewMonitoringService(location *time.Location) *MonitoringService {
	if location == nil {
		location = time.UTC
	}
	return &MonitoringService{
		logs:       make([]LogEntry, 0),
		maxEntries: defaultMaxLogEntries,
		location:   location,
		skipPaths:  []string{"/api/v1/admin", "/api/v1/monitoring", "/metrics"},
		now:        time.Now,
	}
}

// LogRequest はリクエストを記録します。古いエントリは上限を超えると破棄されます。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if over := len(s.logs) - s.maxEntries; over > 0 {
		s.logs = append(s.logs[:0:0], s.logs[over:]...)
	}
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		c.Next()

		path := c.Request.URL.Path
		for _, prefix := range s.skipPaths {
			if strings.HasPrefix(path, prefix) {
				return
			}
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		})
	}
}

// HourlyRequests is the request count of one hour bucket.
type HourlyRequests struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// StatusClassCount counts responses of one status class.
type StatusClassCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EndpointResponseTime is the mean response time of one path in milliseconds.
type EndpointResponseTime struct {
	Endpoint     string `json:"endpoint"`
	ResponseTime int64  `json:"responseTime"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []HourlyRequests       `json:"requestsOverTime"`
	Endpoints        map[string]int         `json:"endpoints"`
	StatusCodes      []StatusClassCount     `json:"statusCodes"`
	AvgResponseTimes []EndpointResponseTime `json:"avgResponseTimes"`
	RecentErrors     []LogEntry             `json:"recentErrors"`
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	if periodHours <= 0 {
		periodHours = 24
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().In(s.location)
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filtered := make([]LogEntry, 0)
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			filtered = append(filtered, entry)
		}
	}

	// 時間のバケットを過去から現在の順に初期化
	requestsOverTime := make([]HourlyRequests, periodHours)
	bucketIndex := make(map[int64]int, periodHours)
	for i := 0; i < periodHours; i++ {
		bucket := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		requestsOverTime[i] = HourlyRequests{Time: bucket.Format("15:00")}
		bucketIndex[bucket.Unix()] = i
	}

	endpoints := make(map[string]int)
	statusCodes := []StatusClassCount{
		{Name: "2xx Success"},
		{Name: "4xx Client Error"},
		{Name: "5xx Server Error"},
	}
	responseTimeSum := make(map[string]time.Duration)
	var endpointOrder []string

	for _, entry := range filtered {
		if i, ok := bucketIndex[entry.Timestamp.In(s.location).Truncate(time.Hour).Unix()]; ok {
			requestsOverTime[i].Requests++
		}

		if _, seen := endpoints[entry.Path]; !seen {
			endpointOrder = append(endpointOrder, entry.Path)
		}
		endpoints[entry.Path]++
		responseTimeSum[entry.Path] += entry.ResponseTime

		switch {
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCodes[0].Value++
		case entry.StatusCode >= 400 && entry.StatusCode < 500:
			statusCodes[1].Value++
		case entry.StatusCode >= 500:
			statusCodes[2].Value++
		}
	}

	avgResponseTimes := make([]EndpointResponseTime, 0, len(endpointOrder))
	for _, path := range endpointOrder {
		avg := responseTimeSum[path].Milliseconds() / int64(endpoints[path])
		avgResponseTimes = append(avgResponseTimes, EndpointResponseTime{Endpoint: path, ResponseTime: avg})
	}

	// 直近の5xxエラーを新しい順に最大10件
	recentErrors := make([]LogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		RequestsOverTime: requestsOverTime,
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
	}
}
