package order

import (
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderListQuery_ToFilter(t *testing.T) {
	t.Run("normalizes status and paging", func(t *testing.T) {
		f, err := OrderListQuery{Status: " Shipped ", PageSize: 500}.ToFilter()
		require.NoError(t, err)
		assert.Equal(t, "shipped", f.Filters["status"])
		assert.Equal(t, 1, f.Page)
		assert.Equal(t, MaxPageSize, f.PageSize)
		assert.Equal(t, shared.OrderDesc, f.OrderDir)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := OrderListQuery{Status: "lost"}.ToFilter()
		require.Error(t, err)
	})

	t.Run("no status means no filter", func(t *testing.T) {
		f, err := OrderListQuery{}.ToFilter()
		require.NoError(t, err)
		assert.NotContains(t, f.Filters, "status")
	})
}
