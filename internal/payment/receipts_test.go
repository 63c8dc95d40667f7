package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltReceiptStore(t *testing.T) {
	store, err := NewBoltReceiptStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	seen, err := store.Seen("order_1|pay_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.Record("order_1|pay_1"))

	seen, err = store.Seen("order_1|pay_1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.Seen("order_1|pay_2")
	require.NoError(t, err)
	assert.False(t, seen)
}
