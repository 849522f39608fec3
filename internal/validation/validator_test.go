package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-pipeline/internal/types"
)

func datasetWith(cols ...string) *types.Dataset {
	return &types.Dataset{Source: "/raw/part.csv", Columns: cols}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		ds          *types.Dataset
		wantValid   bool
		wantMissing []string
	}{
		{
			name:      "all required columns",
			ds:        datasetWith(types.RequiredColumns...),
			wantValid: true,
		},
		{
			name:      "extra columns allowed",
			ds:        datasetWith(append([]string{"payment_method", "revenue"}, types.RequiredColumns...)...),
			wantValid: true,
		},
		{
			name:        "missing region",
			ds:          datasetWith("order_id", "date", "product", "quantity", "unit_price", "discount"),
			wantMissing: []string{"region"},
		},
		{
			name:        "names are case-sensitive",
			ds:          datasetWith("ORDER_ID", "date", "region", "product", "quantity", "unit_price", "Discount"),
			wantMissing: []string{"order_id", "discount"},
		},
		{
			name:        "nil dataset",
			ds:          nil,
			wantMissing: types.RequiredColumns,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.ds)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantMissing, res.Missing)
		})
	}
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(datasetWith(types.RequiredColumns...)))

	err := Check(datasetWith("order_id"))
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "/raw/part.csv", verr.Source)
	assert.Equal(t, []string{"date", "region", "product", "quantity", "unit_price", "discount"}, verr.Missing)
	assert.Equal(t, "part.csv: missing required columns [date, region, product, quantity, unit_price, discount]", err.Error())
}
