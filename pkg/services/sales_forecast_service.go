package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"sales-forecast-api/pkg/models"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// CleanRecord is a validated record with its product encoded.
type CleanRecord struct {
	MonthIndex   int
	ProductCode  int
	QuantitySold float64
}

// ForecastOptions configures the model built for every run.
type ForecastOptions struct {
	Seed         int64
	Epochs       int
	LearningRate float64
	// MaxConcurrentFits bounds how many runs train at the same time.
	// Zero or less means runtime.GOMAXPROCS(0).
	MaxConcurrentFits int
	// OnEpoch, when set, receives training progress for every run.
	OnEpoch EpochObserver
}

// RunResult is the output of one pipeline run.
type RunResult struct {
	RunID            string
	Points           []models.ForecastPoint
	Products         []string
	Scale            ScaleParams
	TrainingExamples int
	SkippedRecords   int
	FinalLoss        float64
}

// SalesForecastService runs the validate → encode → fit → project pipeline.
// The service itself is stateless: every Run builds its own catalog, scaler
// and model, so concurrent runs never share training state.
type SalesForecastService struct {
	validator *SalesRecordValidator
	opts      ForecastOptions
	fitSlots  *semaphore.Weighted
	metrics   *ForecastMetrics
	logger    *slog.Logger
}

// NewSalesForecastService creates the service. metrics may be nil.
func NewSalesForecastService(opts ForecastOptions, metrics *ForecastMetrics, logger *slog.Logger) *SalesForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxConcurrentFits <= 0 {
		opts.MaxConcurrentFits = runtime.GOMAXPROCS(0)
	}
	return &SalesForecastService{
		validator: NewSalesRecordValidator(logger),
		opts:      opts,
		fitSlots:  semaphore.NewWeighted(int64(opts.MaxConcurrentFits)),
		metrics:   metrics,
		logger:    logger,
	}
}

// Validator returns the record validator used by the service.
func (s *SalesForecastService) Validator() *SalesRecordValidator {
	return s.validator
}

// Run projects the quantity sold of product for ForecastHorizonMonths months
// starting at startYearMonth ("YYYY-MM"). It returns every point or an error,
// never a partial forecast. raw is not modified.
func (s *SalesForecastService) Run(ctx context.Context, raw []models.RawRecord, product, startYearMonth string) (*RunResult, error) {
	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID), slog.String("product", product))

	result, err := s.run(ctx, logger, runID, raw, product, startYearMonth)
	switch {
	case err == nil:
		s.metrics.observeRun(runResultSuccess)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.metrics.observeRun(runResultCancelled)
		logger.Info("Forecast run abandoned", slog.String("error", err.Error()))
	default:
		s.metrics.observeRun(runResultFailure)
		logger.Warn("Forecast run failed", slog.String("error", err.Error()))
	}
	return result, err
}

func (s *SalesForecastService) run(ctx context.Context, logger *slog.Logger, runID string, raw []models.RawRecord, product, startYearMonth string) (*RunResult, error) {
	start, err := ParseYearMonth(startYearMonth)
	if err != nil {
		return nil, err
	}

	valid, issues := s.validator.Validate(raw)
	s.metrics.observeSkipped(len(issues))

	catalog := NewProductCatalog()
	clean := make([]CleanRecord, len(valid))
	quantities := make([]float64, len(valid))
	for i, r := range valid {
		clean[i] = CleanRecord{
			MonthIndex:   r.MonthIndex(),
			ProductCode:  catalog.Encode(r.ProductDescription),
			QuantitySold: r.QuantitySold,
		}
		quantities[i] = r.QuantitySold
	}

	scaler, err := FitQuantityScaler(quantities)
	if err != nil {
		return nil, err
	}

	productCode, ok := catalog.Code(product)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, product)
	}

	examples := make([]TrainingExample, len(clean))
	for i, r := range clean {
		examples[i] = TrainingExample{
			Features: TrainingFeatures(r.MonthIndex, r.ProductCode),
			Target:   scaler.Normalize(r.QuantitySold),
		}
	}

	model := NewForecastModel(ModelOptions{
		Seed:         s.opts.Seed,
		Epochs:       s.opts.Epochs,
		LearningRate: s.opts.LearningRate,
		OnEpoch: func(epoch int, loss float64) {
			logger.Debug("Training pass complete", slog.Int("epoch", epoch), slog.Float64("loss", loss))
			if s.opts.OnEpoch != nil {
				s.opts.OnEpoch(epoch, loss)
			}
		},
	})

	// 学習はCPUを占有するため同時実行数を制限
	if err := s.fitSlots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	fitStart := time.Now()
	err = model.Fit(ctx, examples)
	s.fitSlots.Release(1)
	if err != nil {
		return nil, err
	}
	s.metrics.observeFit(time.Since(fitStart))

	horizon := GenerateHorizon(start, ForecastHorizonMonths)
	points := make([]models.ForecastPoint, 0, len(horizon))
	for _, ym := range horizon {
		normalized, err := model.Predict(ForecastFeatures(ym.Month, productCode))
		if err != nil {
			return nil, err
		}
		points = append(points, models.ForecastPoint{
			Label:              ym.Label(),
			ProductDescription: product,
			QuantitySold:       scaler.Denormalize(normalized),
		})
	}

	logger.Info("Forecast run complete",
		slog.Int("training_examples", len(examples)),
		slog.Int("skipped_records", len(issues)),
		slog.Int("products", catalog.Len()),
		slog.Float64("final_loss", model.Loss()),
		slog.Duration("fit_duration", time.Since(fitStart)))

	return &RunResult{
		RunID:            runID,
		Points:           points,
		Products:         catalog.Products(),
		Scale:            scaler.Params(),
		TrainingExamples: len(examples),
		SkippedRecords:   len(issues),
		FinalLoss:        model.Loss(),
	}, nil
}

// SummarizeForecast computes descriptive statistics over the projected points.
func SummarizeForecast(points []models.ForecastPoint) models.ForecastStatistics {
	if len(points) == 0 {
		return models.ForecastStatistics{}
	}
	stats := models.ForecastStatistics{Max: points[0].QuantitySold, Min: points[0].QuantitySold}
	for _, p := range points {
		stats.Total += p.QuantitySold
		if p.QuantitySold > stats.Max {
			stats.Max = p.QuantitySold
		}
		if p.QuantitySold < stats.Min {
			stats.Min = p.QuantitySold
		}
	}
	stats.Average = stats.Total / float64(len(points))
	return stats
}
