package models

// RawRecord is one row of sales history as delivered by the file parser or
// an API client. Fields may be malformed; QuantitySold is either a JSON
// number or a numeric string.
type RawRecord struct {
	SalesDate          string      `json:"sales_date"`
	ProductDescription string      `json:"product_description"`
	QuantitySold       interface{} `json:"quantity_sold"`
}

// ForecastPoint is a single projected month for one product.
type ForecastPoint struct {
	Label              string  `json:"label"` // e.g. "April 2023"
	ProductDescription string  `json:"product_description"`
	QuantitySold       float64 `json:"quantity_sold"`
}

// ForecastRequest 販売予測リクエスト
// DatasetID refers to an uploaded file; Records may be sent inline instead.
type ForecastRequest struct {
	DatasetID      string      `json:"dataset_id,omitempty"`
	Records        []RawRecord `json:"records,omitempty"`
	Product        string      `json:"product" binding:"required"`
	StartYearMonth string      `json:"start_year_month" binding:"required"` // YYYY-MM
}

// ForecastStatistics summarizes the projected quantities over the horizon.
type ForecastStatistics struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	Total   float64 `json:"total"`
}

// ForecastResponse 販売予測結果
type ForecastResponse struct {
	RunID            string             `json:"run_id"`
	Product          string             `json:"product"`
	StartYearMonth   string             `json:"start_year_month"`
	Points           []ForecastPoint    `json:"points"`
	Statistics       ForecastStatistics `json:"statistics"`
	Products         []string           `json:"products"`
	TrainingExamples int                `json:"training_examples"`
	SkippedRecords   int                `json:"skipped_records"`
	FinalLoss        float64            `json:"final_loss"`
	GeneratedAt      string             `json:"generated_at"`
}

// SalesUploadResponse is returned after a sales file has been imported.
type SalesUploadResponse struct {
	DatasetID      string   `json:"dataset_id"`
	FileName       string   `json:"file_name"`
	RecordCount    int      `json:"record_count"`
	SkippedRecords int      `json:"skipped_records"`
	Products       []string `json:"products"`
	UploadedAt     string   `json:"uploaded_at"`
}

// SalesDatasetSummary is the list view of a stored dataset.
type SalesDatasetSummary struct {
	DatasetID   string `json:"dataset_id"`
	FileName    string `json:"file_name"`
	RecordCount int    `json:"record_count"`
	Products    int    `json:"products"`
	UploadedAt  string `json:"uploaded_at"`
}

// ProductHistoryStatistics describes the monthly sales history of one product.
type ProductHistoryStatistics struct {
	Product        string             `json:"product"`
	Months         int                `json:"months"`
	Total          float64            `json:"total"`
	Mean           float64            `json:"mean"`
	Median         float64            `json:"median"`
	StdDev         float64            `json:"std_dev"`
	Min            float64            `json:"min"`
	Max            float64            `json:"max"`
	MonthlyAverage map[string]float64 `json:"monthly_average"` // keyed by English month name
	Trend          float64            `json:"trend"`           // change per month
	TrendDirection string             `json:"trend_direction"` // "increasing", "decreasing", "stable"
}
