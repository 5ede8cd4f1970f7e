package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sales-forecast-api/pkg/models"
	"sales-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// SalesHandler 販売データのアップロードと管理を担当するハンドラー
type SalesHandler struct {
	parser         *services.SalesFileParser
	store          *services.SalesDatasetStore
	metrics        *services.ForecastMetrics
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewSalesHandler 新しい販売データハンドラーを作成
func NewSalesHandler(parser *services.SalesFileParser, store *services.SalesDatasetStore, metrics *services.ForecastMetrics, maxUploadBytes int64, logger *slog.Logger) *SalesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalesHandler{
		parser:         parser,
		store:          store,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// UploadSales CSV/XLSXの販売履歴を取り込み、製品一覧を返す
func (h *SalesHandler) UploadSales(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			respondTooLarge(c, h.maxUploadBytes)
			return
		}
		respondBadRequest(c, "ファイルの取得に失敗しました: "+err.Error())
		return
	}
	defer file.Close()

	records, err := h.parser.Parse(fileHeader.Filename, file)
	if err != nil {
		h.logger.Warn("Sales file rejected",
			slog.String("file", fileHeader.Filename),
			slog.String("error", err.Error()))
		status, code := errorStatus(err)
		if status == http.StatusInternalServerError {
			status, code = http.StatusBadRequest, "INVALID_FILE"
		}
		c.JSON(status, gin.H{"success": false, "error_code": code, "error": err.Error()})
		return
	}

	dataset := h.store.Put(fileHeader.Filename, records)
	h.metrics.ObserveUpload()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": models.SalesUploadResponse{
			DatasetID:      dataset.ID,
			FileName:       dataset.FileName,
			RecordCount:    len(dataset.Records),
			SkippedRecords: dataset.SkippedRecords,
			Products:       dataset.Products,
			UploadedAt:     dataset.UploadedAt.Format(time.RFC3339),
		},
	})
}

// ListDatasets 取り込み済みデータセットの一覧を返す
func (h *SalesHandler) ListDatasets(c *gin.Context) {
	datasets := h.store.List()
	summaries := make([]models.SalesDatasetSummary, 0, len(datasets))
	for _, d := range datasets {
		summaries = append(summaries, d.Summary())
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
		"count":   len(summaries),
	})
}

// GetDatasetProducts 製品セレクター用の製品一覧を返す
func (h *SalesHandler) GetDatasetProducts(c *gin.Context) {
	dataset, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dataset.Products,
		"count":   len(dataset.Products),
	})
}

// GetProductStatistics 製品の月次販売履歴の統計を返す
func (h *SalesHandler) GetProductStatistics(c *gin.Context) {
	product := c.Query("product")
	if product == "" {
		respondBadRequest(c, "product を指定してください")
		return
	}
	stats, err := h.store.ProductStatistics(c.Param("id"), product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// DeleteDataset データセットを削除
func (h *SalesHandler) DeleteDataset(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
