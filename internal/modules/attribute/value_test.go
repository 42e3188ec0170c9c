package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectOptions(values ...string) []*Option {
	opts := make([]*Option, 0, len(values))
	for i, v := range values {
		opts = append(opts, &Option{Value: v, SortOrder: i})
	}
	return opts
}

func TestValidateValue_Text(t *testing.T) {
	attr := &Attribute{DataType: TypeText}

	assert.True(t, ValidateValue(attr, nil, "anything"))
	assert.True(t, ValidateValue(attr, nil, ""))
	assert.False(t, ValidateValue(attr, nil, 42.0))
	assert.False(t, ValidateValue(attr, nil, true))
	assert.False(t, ValidateValue(attr, nil, nil))
	assert.False(t, ValidateValue(attr, nil, []any{"a"}))
}

func TestValidateValue_Number(t *testing.T) {
	attr := &Attribute{DataType: TypeNumber}

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"float", 3.14, true},
		{"int", 7, true},
		{"numeric string", "42", true},
		{"decimal string", "-0.5", true},
		{"scientific string", "1e3", true},
		{"partially numeric string", "12abc", false},
		{"empty string", "", false},
		{"bool", true, false},
		{"array", []any{1.0}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateValue(attr, nil, tt.value))
		})
	}
}

func TestValidateValue_Boolean(t *testing.T) {
	attr := &Attribute{DataType: TypeBoolean}

	for _, ok := range []any{true, false, "1", "0", "true", "false"} {
		assert.True(t, ValidateValue(attr, nil, ok), "expected %v to validate", ok)
	}
	for _, bad := range []any{"yes", "no", "TRUE", "False", 1.0, 0.0, nil, []any{true}} {
		assert.False(t, ValidateValue(attr, nil, bad), "expected %v to be rejected", bad)
	}
}

func TestValidateValue_Select(t *testing.T) {
	attr := &Attribute{DataType: TypeSelect}
	opts := selectOptions("Red", "Blue")

	assert.True(t, ValidateValue(attr, opts, "Red"))
	assert.True(t, ValidateValue(attr, opts, "Blue"))
	// Exact, case-sensitive match only.
	assert.False(t, ValidateValue(attr, opts, "red"))
	assert.False(t, ValidateValue(attr, opts, "Green"))
	assert.False(t, ValidateValue(attr, opts, []any{"Red"}))
	assert.False(t, ValidateValue(attr, opts, nil))
}

func TestValidateValue_MultiSelect(t *testing.T) {
	attr := &Attribute{DataType: TypeMultiSelect}
	opts := selectOptions("S", "M", "L")

	assert.True(t, ValidateValue(attr, opts, []any{"S", "L"}))
	assert.True(t, ValidateValue(attr, opts, []any{}))
	// A scalar is rejected even when it matches an option.
	assert.False(t, ValidateValue(attr, opts, "S"))
	assert.False(t, ValidateValue(attr, opts, []any{"S", "XL"}))
	assert.False(t, ValidateValue(attr, opts, []any{"S", 2.0}))
}

func TestIsValidValueAlias(t *testing.T) {
	attr := &Attribute{DataType: TypeNumber}
	assert.Equal(t, ValidateValue(attr, nil, "12"), IsValidValue(attr, nil, "12"))
	assert.Equal(t, ValidateValue(attr, nil, "12x"), IsValidValue(attr, nil, "12x"))
}

func TestEncodeCustomValue(t *testing.T) {
	got, err := encodeCustomValue(TypeMultiSelect, []any{"S", "M"})
	require.NoError(t, err)
	assert.JSONEq(t, `["S","M"]`, got)

	got, err = encodeCustomValue(TypeNumber, 12.5)
	require.NoError(t, err)
	assert.Equal(t, "12.5", got)

	got, err = encodeCustomValue(TypeBoolean, true)
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	got, err = encodeCustomValue(TypeText, "plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)
}

func TestDecodeMultiValue(t *testing.T) {
	items, err := decodeMultiValue(`["S","M"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"S", "M"}, items)

	_, err = decodeMultiValue(`not json`)
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "part-number", Slugify("Part Number"))
	assert.Equal(t, "color", Slugify("Color"))
	assert.Equal(t, "size-eu", Slugify("Size (EU)"))
	assert.Equal(t, "a-b-c", Slugify("  a  b  c  "))
}
