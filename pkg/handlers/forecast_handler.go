package handlers

import (
	"net/http"
	"time"

	"sales-forecast-api/pkg/models"
	"sales-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ForecastHandler 販売予測ハンドラー
type ForecastHandler struct {
	service      *services.SalesForecastService
	store        *services.SalesDatasetStore
	maxBodyBytes int64
}

// NewForecastHandler 新しい販売予測ハンドラーを作成
// maxBodyBytes caps inline records the same way uploads are capped; zero disables it.
func NewForecastHandler(service *services.SalesForecastService, store *services.SalesDatasetStore, maxBodyBytes int64) *ForecastHandler {
	return &ForecastHandler{
		service:      service,
		store:        store,
		maxBodyBytes: maxBodyBytes,
	}
}

// PredictSales 選択した製品の6か月分の販売数量を予測
// The request either names an uploaded dataset or carries the records inline.
// The run is bound to the request context, so a client that disconnects
// abandons the fit.
func (h *ForecastHandler) PredictSales(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var request models.ForecastRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		if isBodyTooLarge(err) {
			respondTooLarge(c, h.maxBodyBytes)
			return
		}
		respondBadRequest(c, "リクエストの解析に失敗しました: "+err.Error())
		return
	}

	records := request.Records
	if request.DatasetID != "" {
		dataset, err := h.store.Get(request.DatasetID)
		if err != nil {
			respondError(c, err)
			return
		}
		records = dataset.Records
	}
	if len(records) == 0 {
		respondBadRequest(c, "dataset_id または records を指定してください")
		return
	}

	result, err := h.service.Run(c.Request.Context(), records, request.Product, request.StartYearMonth)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": models.ForecastResponse{
			RunID:            result.RunID,
			Product:          request.Product,
			StartYearMonth:   request.StartYearMonth,
			Points:           result.Points,
			Statistics:       services.SummarizeForecast(result.Points),
			Products:         result.Products,
			TrainingExamples: result.TrainingExamples,
			SkippedRecords:   result.SkippedRecords,
			FinalLoss:        result.FinalLoss,
			GeneratedAt:      time.Now().Format("2006-01-02 15:04:05"),
		},
	})
}
