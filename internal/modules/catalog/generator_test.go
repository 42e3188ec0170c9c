package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chisomo/mercato-backend/internal/modules/attribute"
)

func testAxis(slug string, values ...string) axis {
	opts := make([]*attribute.Option, 0, len(values))
	for i, v := range values {
		opts = append(opts, &attribute.Option{Value: v, SortOrder: i})
	}
	return axis{slug: slug, options: opts}
}

func TestExpand_ProductSize(t *testing.T) {
	combos := expand([]axis{
		testAxis("color", "Red", "Blue"),
		testAxis("size", "S", "M", "L"),
	})
	require.Len(t, combos, 6)

	// Enumeration order follows axis order, options in sort order.
	assert.Equal(t, map[string]string{"color": "Red", "size": "S"}, combos[0])
	assert.Equal(t, map[string]string{"color": "Red", "size": "M"}, combos[1])
	assert.Equal(t, map[string]string{"color": "Red", "size": "L"}, combos[2])
	assert.Equal(t, map[string]string{"color": "Blue", "size": "S"}, combos[3])
	assert.Equal(t, map[string]string{"color": "Blue", "size": "M"}, combos[4])
	assert.Equal(t, map[string]string{"color": "Blue", "size": "L"}, combos[5])
}

func TestExpand_PairwiseDistinct(t *testing.T) {
	combos := expand([]axis{
		testAxis("color", "Red", "Blue", "Green"),
		testAxis("size", "S", "M"),
		testAxis("fit", "Slim", "Regular"),
	})
	require.Len(t, combos, 12)

	seen := map[string]bool{}
	for _, c := range combos {
		key := combinationKey(c)
		assert.False(t, seen[key], "duplicate combination %s", key)
		seen[key] = true
		assert.Len(t, c, 3)
	}
}

func TestExpand_NoAxes(t *testing.T) {
	assert.Empty(t, expand(nil))
	assert.Empty(t, expand([]axis{}))
}

func TestCombinationKey_OrderIndependent(t *testing.T) {
	a := combinationKey(map[string]string{"color": "Red", "size": "S"})
	b := combinationKey(map[string]string{"size": "S", "color": "Red"})
	assert.Equal(t, a, b)

	c := combinationKey(map[string]string{"color": "Red", "size": "M"})
	assert.NotEqual(t, a, c)
}

func TestVariationSKU(t *testing.T) {
	color := testAxis("color", "Red", "Blue")
	color.options[0].Code = "RD"
	size := testAxis("size", "Extra Large")

	sku := variationSKU("TEE-01", []axis{color, size}, map[string]string{
		"color": "Red", "size": "Extra Large",
	})
	assert.Equal(t, "TEE-01-RD-extra-large", sku)

	// Without a code the option value is slugified.
	sku = variationSKU("TEE-01", []axis{color, size}, map[string]string{
		"color": "Blue", "size": "Extra Large",
	})
	assert.Equal(t, "TEE-01-blue-extra-large", sku)
}
