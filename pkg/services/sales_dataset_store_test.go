package services

import (
	"errors"
	"testing"
	"time"

	"sales-forecast-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesDatasetStorePutAndGet(t *testing.T) {
	store := NewSalesDatasetStore(nil)
	records := append(widgetRecords(),
		models.RawRecord{SalesDate: "1/1/2023", ProductDescription: "Gadget", QuantitySold: 3.0},
		models.RawRecord{SalesDate: "", ProductDescription: "Broken", QuantitySold: 3.0},
	)

	dataset := store.Put("sales.csv", records)
	require.NotEmpty(t, dataset.ID)
	assert.Equal(t, []string{"Widget", "Gadget"}, dataset.Products)
	assert.Equal(t, 1, dataset.SkippedRecords)
	assert.Len(t, dataset.Records, 5)

	// the store keeps its own copy
	records[0].ProductDescription = "Changed"
	got, err := store.Get(dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Records[0].ProductDescription)
}

func TestSalesDatasetStoreDelete(t *testing.T) {
	store := NewSalesDatasetStore(nil)
	dataset := store.Put("sales.csv", widgetRecords())

	require.NoError(t, store.Delete(dataset.ID))
	_, err := store.Get(dataset.ID)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
	assert.True(t, errors.Is(store.Delete(dataset.ID), ErrDatasetNotFound))
}

func TestSalesDatasetStoreListOrdered(t *testing.T) {
	store := NewSalesDatasetStore(nil)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	store.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}

	first := store.Put("a.csv", widgetRecords())
	second := store.Put("b.csv", widgetRecords())

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	summary := list[0].Summary()
	assert.Equal(t, "a.csv", summary.FileName)
	assert.Equal(t, 3, summary.RecordCount)
	assert.Equal(t, 1, summary.Products)
	assert.Equal(t, "2024-01-01T00:01:00Z", summary.UploadedAt)
}
