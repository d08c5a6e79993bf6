package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/repository"
)

func TestClassifyCatalogPosted(t *testing.T) {
	svc := NewCatalogService(repository.NewSyntheticRepository(42, 5, 30))

	result, err := svc.ClassifyCatalog([]CatalogEntryRequest{
		{ProductID: "SKU-0001", AnnualValue: 800},
		{ProductID: "SKU-0002", AnnualValue: 150},
		{ProductID: "SKU-0003", AnnualValue: 50},
	})
	require.NoError(t, err)

	require.Len(t, result.Items, 3)
	assert.Equal(t, domain.ClassA, result.Items[0].Class)
}

func TestClassifyCatalogRejectsMissingIDs(t *testing.T) {
	svc := NewCatalogService(repository.NewSyntheticRepository(42, 5, 30))

	_, err := svc.ClassifyCatalog([]CatalogEntryRequest{{AnnualValue: 100}})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestClassifyProductsFromRepository(t *testing.T) {
	repo := repository.NewSyntheticRepository(42, 15, 90)
	svc := NewCatalogService(repo)

	result, err := svc.ClassifyProducts(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Items, 15)
	assert.Equal(t, 15, result.CountA+result.CountB+result.CountC)
	assert.Greater(t, result.TotalValue, 0.0)
}

func TestClassifyProductsEmptyRepository(t *testing.T) {
	svc := NewCatalogService(repository.NewSyntheticRepository(42, 0, 0))

	_, err := svc.ClassifyProducts(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
