package track

import (
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracked(clientID uint64, price string) model.ExistingOrder {
	order := model.NewDesiredOrder(enum.OrderSideBuy, decimal.RequireFromString(price), decimal.NewFromInt(1), enum.OrderTypePostOnly)
	return model.ExistingOrder{Order: order.Order.WithClientID(clientID)}
}

func TestTrackerRejectsZeroAndDuplicateIDs(t *testing.T) {
	tr := NewTracker()

	err := tr.Track(model.ExistingOrder{})
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)

	require.NoError(t, tr.Track(tracked(1, "98")))
	err = tr.Track(tracked(1, "99"))
	assert.ErrorIs(t, err, exception.ErrVenueDuplicateClientID)
	assert.Equal(t, 1, tr.Len())
}

func TestTrackerExistingKeepsInsertionOrder(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Track(tracked(3, "98")))
	require.NoError(t, tr.Track(tracked(1, "99")))
	require.NoError(t, tr.Track(tracked(2, "100")))

	got := tr.Existing()
	require.Len(t, got, 3)
	assert.Equal(t, uint64(3), got[0].ClientID)
	assert.Equal(t, uint64(1), got[1].ClientID)
	assert.Equal(t, uint64(2), got[2].ClientID)

	tr.Untrack(1)
	got = tr.Existing()
	require.Len(t, got, 2)
	assert.Equal(t, uint64(3), got[0].ClientID)
	assert.Equal(t, uint64(2), got[1].ClientID)
}

func TestTrackerUntrackUnknownIsNoop(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Track(tracked(1, "98")))
	tr.Untrack(42)
	assert.Equal(t, 1, tr.Len())
}

func TestTrackerPrune(t *testing.T) {
	tr := NewTracker()
	require.NoError(t, tr.Track(tracked(1, "98")))
	require.NoError(t, tr.Track(tracked(2, "99")))
	require.NoError(t, tr.Track(tracked(3, "100")))

	// only 2 is still on the book; 1 and 3 were filled or expired
	dropped := tr.Prune(map[uint64]struct{}{2: {}})
	require.Len(t, dropped, 2)
	assert.Equal(t, uint64(1), dropped[0].ClientID)
	assert.Equal(t, uint64(3), dropped[1].ClientID)
	assert.Equal(t, 1, tr.Len())
	assert.Equal(t, uint64(2), tr.Existing()[0].ClientID)
}
