package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderTransform(t *testing.T) {
	e, err := ParseEncoder([]byte(`{"features": {
		"productType": ["hoodie", "t-shirt", "unknown_category"]
	}}`))
	require.NoError(t, err)

	got, err := e.Transform("productType", "hoodie")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	got, err = e.Transform("productType", "t-shirt")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestEncoderTransform_UnknownValueFallsBack(t *testing.T) {
	e, err := ParseEncoder([]byte(`{"features": {
		"productType": ["hoodie", "unknown_category"]
	}}`))
	require.NoError(t, err)

	got, err := e.Transform("productType", "beanie")
	require.NoError(t, err)
	assert.Equal(t, 1.0, got, "out-of-vocabulary values encode as unknown_category")
}

func TestEncoderTransform_NoUnknownClass(t *testing.T) {
	e, err := ParseEncoder([]byte(`{"features": {"productType": ["hoodie"]}}`))
	require.NoError(t, err)

	_, err = e.Transform("productType", "beanie")
	assert.ErrorContains(t, err, "unknown_category")
}

func TestEncoderTransform_UnknownFeature(t *testing.T) {
	e, err := ParseEncoder([]byte(`{"features": {"a": ["x"]}}`))
	require.NoError(t, err)

	_, err = e.Transform("b", "x")
	assert.ErrorContains(t, err, `no classes for feature "b"`)
}

func TestEncoderClasses(t *testing.T) {
	e, err := ParseEncoder([]byte(`{"features": {"a": ["x", "y"], "b": ["z"]}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, e.Classes("a"))
	assert.Equal(t, []string{"a", "b"}, e.Features())
}

func TestParseEncoder_Empty(t *testing.T) {
	_, err := ParseEncoder([]byte(`{"features": {}}`))
	assert.Error(t, err)
}
