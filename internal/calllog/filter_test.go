package calllog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calllog/pkg/cel"
	"calllog/pkg/models"
)

func TestParseFilter_NilSpecAcceptsAll(t *testing.T) {
	f, err := ParseFilter(nil, nil)
	require.NoError(t, err)

	assert.False(t, f.reachesLowerBound(-1<<62))
	assert.True(t, f.matchesNumber("anything"))
	assert.True(t, f.matchesType(CallTypeUnknown))
	assert.True(t, f.matchesMin(-1))
	assert.True(t, f.matchesMax(1<<62))
	assert.False(t, f.hasExpression())
}

func TestParseFilter_Bounds(t *testing.T) {
	f, err := ParseFilter(&models.FilterSpec{
		MinTimestamp: models.StringPtr("1000"),
		MaxTimestamp: models.StringPtr("2000"),
	}, nil)
	require.NoError(t, err)

	assert.True(t, f.matchesMin(1000))
	assert.False(t, f.matchesMin(999))
	assert.True(t, f.matchesMax(2000))
	assert.False(t, f.matchesMax(2001))
	assert.True(t, f.reachesLowerBound(1000))
	assert.False(t, f.reachesLowerBound(1001))
}

func TestParseFilter_SentinelsAreStringCompared(t *testing.T) {
	f, err := ParseFilter(&models.FilterSpec{
		MinTimestamp: models.StringPtr("00"),
		MaxTimestamp: models.StringPtr("-01"),
	}, nil)
	require.NoError(t, err)

	assert.True(t, f.hasMin, "\"00\" is a real bound, not the sentinel")
	assert.True(t, f.hasMax)
	assert.False(t, f.matchesMax(0))
}

func TestParseFilter_ListItemsAreStringified(t *testing.T) {
	f, err := ParseFilter(&models.FilterSpec{
		PhoneNumbers: models.StringPtr(`[5551234, "+1555", true]`),
	}, nil)
	require.NoError(t, err)

	assert.True(t, f.matchesNumber("5551234"))
	assert.True(t, f.matchesNumber("+1555"))
	assert.True(t, f.matchesNumber("true"))
	assert.False(t, f.matchesNumber("555"))
}

func TestParseFilter_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		spec  models.FilterSpec
		field string
	}{
		{"non numeric min", models.FilterSpec{MinTimestamp: models.StringPtr("yesterday")}, "minTimestamp"},
		{"empty min", models.FilterSpec{MinTimestamp: models.StringPtr("")}, "minTimestamp"},
		{"fractional max", models.FilterSpec{MaxTimestamp: models.StringPtr("1.5")}, "maxTimestamp"},
		{"types not json", models.FilterSpec{Types: models.StringPtr("INCOMING")}, "types"},
		{"types empty string", models.FilterSpec{Types: models.StringPtr("")}, "types"},
		{"types object", models.FilterSpec{Types: models.StringPtr(`{"a":1}`)}, "types"},
		{"types null", models.FilterSpec{Types: models.StringPtr("null")}, "types"},
		{"numbers trailing data", models.FilterSpec{PhoneNumbers: models.StringPtr(`["1"] ["2"]`)}, "phoneNumbers"},
		{"numbers unterminated", models.FilterSpec{PhoneNumbers: models.StringPtr(`["1"`)}, "phoneNumbers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec
			_, err := ParseFilter(&spec, nil)
			require.Error(t, err)

			var mfe *MalformedFilterError
			require.ErrorAs(t, err, &mfe)
			assert.Equal(t, tt.field, mfe.Field)
			assert.True(t, IsMalformedFilter(err))
		})
	}
}

func TestParseFilter_Expression(t *testing.T) {
	evaluator, err := cel.NewEvaluator()
	require.NoError(t, err)

	f, err := ParseFilter(&models.FilterSpec{Expression: models.StringPtr("duration > 60")}, evaluator)
	require.NoError(t, err)
	assert.True(t, f.hasExpression())

	_, err = ParseFilter(&models.FilterSpec{Expression: models.StringPtr("duration +")}, evaluator)
	assert.True(t, IsMalformedFilter(err))

	_, err = ParseFilter(&models.FilterSpec{Expression: models.StringPtr("duration")}, evaluator)
	assert.True(t, IsMalformedFilter(err), "non-boolean expressions are rejected")
}

func TestParseFilter_ExpressionWithoutEvaluator(t *testing.T) {
	_, err := ParseFilter(&models.FilterSpec{Expression: models.StringPtr("true")}, nil)
	assert.ErrorIs(t, err, errExpressionUnsupported)

	f, err := ParseFilter(&models.FilterSpec{Expression: models.StringPtr("")}, nil)
	require.NoError(t, err)
	assert.False(t, f.hasExpression())
}
