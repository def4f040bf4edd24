package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merch-forecast/internal/domain"
	"merch-forecast/internal/testutil"
)

func priceTable(rows ...domain.Row) *domain.Table {
	table := domain.NewTable([]string{"price", "item_id", "week"})
	for _, row := range rows {
		table.Append(row)
	}
	return table
}

func TestPredict(t *testing.T) {
	bundle, _ := testutil.PriceBundle()
	uc := NewPredictUseCase(bundle)

	input := priceTable(
		domain.Row{"price": "10", "item_id": "sku-1", "week": "23"},
		domain.Row{"price": "7", "item_id": "sku-2", "week": "24"},
	)

	out, err := uc.Predict(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, []string{"price", "item_id", "week", "predicted_sales_quantity"}, out.Columns)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "20", out.Rows[0]["predicted_sales_quantity"])
	assert.Equal(t, "14", out.Rows[1]["predicted_sales_quantity"])
	assert.Equal(t, "23", out.Rows[0]["week"], "passthrough columns survive untouched")
	assert.Equal(t, "sku-2", out.Rows[1]["item_id"], "row order follows submission order")
}

func TestPredict_RoundsToWholeUnits(t *testing.T) {
	bundle, _ := testutil.PriceBundle()
	uc := NewPredictUseCase(bundle)

	out, err := uc.Predict(context.Background(), priceTable(
		domain.Row{"price": "7.75", "item_id": "sku-1", "week": "1"},
	))

	require.NoError(t, err)
	assert.Equal(t, "16", out.Rows[0]["predicted_sales_quantity"], "15.5 rounds to 16")
}

func TestPredict_InputNotMutated(t *testing.T) {
	bundle, _ := testutil.PriceBundle()
	uc := NewPredictUseCase(bundle)

	input := priceTable(domain.Row{"price": "10", "item_id": "sku-1", "week": "23"})

	_, err := uc.Predict(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, []string{"price", "item_id", "week"}, input.Columns)
	_, ok := input.Rows[0]["predicted_sales_quantity"]
	assert.False(t, ok, "the caller's table must not gain the target column")
}

func TestPredict_Idempotent(t *testing.T) {
	bundle, stub := testutil.PriceBundle()
	uc := NewPredictUseCase(bundle)

	input := priceTable(
		domain.Row{"price": "10", "item_id": "sku-1", "week": "23"},
		domain.Row{"price": "7", "item_id": "sku-2", "week": "24"},
	)

	first, err := uc.Predict(context.Background(), input)
	require.NoError(t, err)
	second, err := uc.Predict(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 4, stub.Calls, "one model call per row per request, no hidden state")
}

func TestPredict_DateReformatted(t *testing.T) {
	bundle, _ := testutil.MerchBundle()
	uc := NewPredictUseCase(bundle)

	table := domain.NewTable(bundle.Manifest.RequiredColumns())
	table.Append(domain.Row{
		"artistName": "Deftones", "Genre": "Metal", "showDate": "6/15/2025",
		"venue name": "The Fox Theater", "venue city": "Oakland", "venue state": "CA",
		"attendance": "1500", "product size": "M", "productType": "T-Shirt",
		"product price": "30", "Item Name": "Skull Tee",
	})

	out, err := uc.Predict(context.Background(), table)

	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", out.Rows[0]["showDate"])
}

func TestPredict_SharesWithinGroup(t *testing.T) {
	bundle, _ := testutil.MerchBundle()
	uc := NewPredictUseCase(bundle)

	row := func(item, price string) domain.Row {
		return domain.Row{
			"artistName": "Deftones", "Genre": "Metal", "showDate": "2025-06-14",
			"venue name": "The Fox Theater", "venue city": "Oakland", "venue state": "CA",
			"attendance": "1500", "product size": "M", "productType": "T-Shirt",
			"product price": price, "Item Name": item,
		}
	}
	table := domain.NewTable(bundle.Manifest.RequiredColumns())
	table.Append(row("Skull Tee", "30"))
	table.Append(row("Logo Tee", "10"))

	out, err := uc.Predict(context.Background(), table)

	require.NoError(t, err)
	// Quantities are 60 and 20 within one artist/show/type group.
	assert.Equal(t, "60", out.Rows[0]["predicted_sales_quantity"])
	assert.Equal(t, "20", out.Rows[1]["predicted_sales_quantity"])
	assert.Equal(t, "75.00", out.Rows[0]["%_item_sales_per_category"])
	assert.Equal(t, "25.00", out.Rows[1]["%_item_sales_per_category"])
	assert.Equal(t, "%_item_sales_per_category", out.Columns[len(out.Columns)-1])
}

func TestPredict_SharesSplitByGroup(t *testing.T) {
	bundle, _ := testutil.MerchBundle()
	uc := NewPredictUseCase(bundle)

	row := func(productType string) domain.Row {
		return domain.Row{
			"artistName": "Deftones", "Genre": "Metal", "showDate": "2025-06-14",
			"venue name": "The Fox Theater", "venue city": "Oakland", "venue state": "CA",
			"attendance": "1500", "product size": "M", "productType": productType,
			"product price": "30", "Item Name": "x",
		}
	}
	table := domain.NewTable(bundle.Manifest.RequiredColumns())
	table.Append(row("T-Shirt"))
	table.Append(row("Hoodie"))

	out, err := uc.Predict(context.Background(), table)

	require.NoError(t, err)
	assert.Equal(t, "100.00", out.Rows[0]["%_item_sales_per_category"])
	assert.Equal(t, "100.00", out.Rows[1]["%_item_sales_per_category"])
}

func TestPredict_ShareZeroTotal(t *testing.T) {
	bundle, _ := testutil.MerchBundle()
	uc := NewPredictUseCase(bundle)

	// A zero price predicts a zero quantity, so the group total is zero.
	table := domain.NewTable(bundle.Manifest.RequiredColumns())
	table.Append(domain.Row{
		"artistName": "Deftones", "Genre": "Metal", "showDate": "2025-06-14",
		"venue name": "The Fox Theater", "venue city": "Oakland", "venue state": "CA",
		"attendance": "1500", "product size": "M", "productType": "T-Shirt",
		"product price": "0", "Item Name": "Sticker",
	})

	out, err := uc.Predict(context.Background(), table)

	require.NoError(t, err)
	assert.Equal(t, "0.00", out.Rows[0]["%_item_sales_per_category"])
}

func TestPredict_EmptyBatch(t *testing.T) {
	bundle, _ := testutil.PriceBundle()
	uc := NewPredictUseCase(bundle)

	_, err := uc.Predict(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)

	_, err = uc.Predict(context.Background(), priceTable())
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

func TestPredict_BundleNotLoaded(t *testing.T) {
	uc := NewPredictUseCase(nil)

	_, err := uc.Predict(context.Background(), priceTable(
		domain.Row{"price": "10", "item_id": "sku-1", "week": "23"},
	))

	assert.ErrorIs(t, err, domain.ErrBundleNotLoaded)
	assert.Nil(t, uc.RequiredColumns())
}

func TestPredict_ValidationPassesThrough(t *testing.T) {
	bundle, stub := testutil.PriceBundle()
	uc := NewPredictUseCase(bundle)

	table := domain.NewTable([]string{"price"})
	table.Append(domain.Row{"price": "10"})

	_, err := uc.Predict(context.Background(), table)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"item_id", "week"}, verr.MissingColumns)
	assert.Zero(t, stub.Calls, "the model never runs on invalid input")
}

func TestPredict_ModelFailureNamesRow(t *testing.T) {
	bundle, stub := testutil.PriceBundle()
	stub.Fn = func([]float64) (float64, error) { return 0, errors.New("boom") }
	uc := NewPredictUseCase(bundle)

	_, err := uc.Predict(context.Background(), priceTable(
		domain.Row{"price": "10", "item_id": "sku-1", "week": "23"},
	))

	assert.EqualError(t, err, "predict row 1: boom")
}
