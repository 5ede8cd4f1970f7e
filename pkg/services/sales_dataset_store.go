package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"sales-forecast-api/pkg/models"

	"github.com/google/uuid"
)

// SalesDataset is an uploaded sales history. It is never modified after Put.
type SalesDataset struct {
	ID             string
	FileName       string
	Records        []models.RawRecord
	Products       []string
	SkippedRecords int
	UploadedAt     time.Time
}

// Summary converts the dataset to its list representation.
func (d *SalesDataset) Summary() models.SalesDatasetSummary {
	return models.SalesDatasetSummary{
		DatasetID:   d.ID,
		FileName:    d.FileName,
		RecordCount: len(d.Records),
		Products:    len(d.Products),
		UploadedAt:  d.UploadedAt.Format(time.RFC3339),
	}
}

// SalesDatasetStore keeps uploaded datasets in memory.
type SalesDatasetStore struct {
	validator *SalesRecordValidator
	datasets  map[string]*SalesDataset
	mu        sync.RWMutex
	now       func() time.Time
}

// NewSalesDatasetStore creates an empty store.
func NewSalesDatasetStore(validator *SalesRecordValidator) *SalesDatasetStore {
	if validator == nil {
		validator = NewSalesRecordValidator(nil)
	}
	return &SalesDatasetStore{
		validator: validator,
		datasets:  make(map[string]*SalesDataset),
		now:       time.Now,
	}
}

// Put stores a copy of records under a new id and computes its product list.
func (s *SalesDatasetStore) Put(fileName string, records []models.RawRecord) *SalesDataset {
	stored := make([]models.RawRecord, len(records))
	copy(stored, records)

	valid, issues := s.validator.Validate(stored)
	dataset := &SalesDataset{
		ID:             uuid.NewString(),
		FileName:       fileName,
		Records:        stored,
		Products:       CatalogFromRecords(valid).Products(),
		SkippedRecords: len(issues),
		UploadedAt:     s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[dataset.ID] = dataset
	return dataset
}

// Get returns the dataset with id.
func (s *SalesDatasetStore) Get(id string) (*SalesDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dataset, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return dataset, nil
}

// Delete removes the dataset with id. Runs already holding it are unaffected.
func (s *SalesDatasetStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	delete(s.datasets, id)
	return nil
}

// List returns all datasets, oldest first.
func (s *SalesDatasetStore) List() []*SalesDataset {
	s.mu.RLock()
	out := make([]*SalesDataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, d)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

// ProductStatistics summarizes the monthly history of product in dataset id.
func (s *SalesDatasetStore) ProductStatistics(id, product string) (models.ProductHistoryStatistics, error) {
	dataset, err := s.Get(id)
	if err != nil {
		return models.ProductHistoryStatistics{}, err
	}
	valid, _ := s.validator.Validate(dataset.Records)
	return ProductHistoryStatistics(valid, product)
}
