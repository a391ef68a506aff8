package dataload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tabscan/internal/errors"
	"tabscan/internal/table"
)

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		dtype table.DType
		want  table.Value
	}{
		{name: "integer with separator", text: "1,250", dtype: table.TypeInt, want: table.IntValue(1250)},
		{name: "float", text: "0.5", dtype: table.TypeFloat, want: table.FloatValue(0.5)},
		{name: "integer text into float", text: "7", dtype: table.TypeFloat, want: table.FloatValue(7)},
		{name: "boolean", text: "TRUE", dtype: table.TypeBool, want: table.BoolValue(true)},
		{name: "plain string", text: "unknown", dtype: table.TypeString, want: table.StringValue("unknown")},
		{name: "iso date", text: "2024-01-15", dtype: table.TypeTime, want: table.TimeValue(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLiteral(tt.text, tt.dtype)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestParseLiteral_Errors(t *testing.T) {
	_, err := ParseLiteral("abc", table.TypeInt)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	_, err = ParseLiteral("15/2024/01", table.TypeTime)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	_, err = ParseLiteral("x", table.DType(99))
	require.Error(t, err)
	assert.True(t, apperrors.IsUnsupported(err))
}

func TestInferLiteral(t *testing.T) {
	assert.True(t, table.IntValue(42).Equal(InferLiteral("42")))
	assert.True(t, table.FloatValue(1.5).Equal(InferLiteral("1.5")))
	assert.True(t, table.BoolValue(false).Equal(InferLiteral("false")))
	assert.True(t, table.StringValue("n/a token").Equal(InferLiteral("n/a token")))
}
