package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merch-forecast/internal/domain"
	"merch-forecast/internal/testutil"
)

func TestModelInfo(t *testing.T) {
	bundle, _ := testutil.PriceBundle()
	uc := NewModelInfoUseCase(bundle)

	info, err := uc.Info(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "test-bundle", info.Name)
	assert.Equal(t, "1", info.Version)
	assert.Equal(t, "stub", info.ModelType)
	assert.Equal(t, "predicted_sales_quantity", info.Target)
	assert.Equal(t, []string{"price"}, info.NumericalFeatures)
	assert.Equal(t, []string{"item_id"}, info.CategoricalFeatures)
	assert.Equal(t, []string{"price", "item_id", "week"}, info.RequiredColumns)
	assert.Equal(t, bundle.LoadedAt, info.LoadedAt)
}

func TestModelInfo_CopiesSlices(t *testing.T) {
	bundle, _ := testutil.PriceBundle()
	uc := NewModelInfoUseCase(bundle)

	info, err := uc.Info(context.Background())
	require.NoError(t, err)

	info.NumericalFeatures[0] = "edited"
	assert.Equal(t, "price", bundle.Manifest.NumericalFeatures[0], "callers must not reach the bundle through the read model")
}

func TestModelInfo_BundleNotLoaded(t *testing.T) {
	_, err := NewModelInfoUseCase(nil).Info(context.Background())
	assert.ErrorIs(t, err, domain.ErrBundleNotLoaded)
}
