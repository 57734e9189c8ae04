package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"Pending", "Confirmed", "Completed", "Cancelled"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), got)
	}

	_, err := ParseStatus("Shipped")
	require.Error(t, err)
	_, err = ParseStatus("pending")
	require.Error(t, err, "status strings are case-sensitive")
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.True(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be legal", tr.from, tr.to)
	}

	denied := []struct{ from, to Status }{
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusCancelled, StatusCompleted},
		{StatusCompleted, StatusPending},
		{StatusCompleted, StatusCancelled},
		{StatusPending, StatusCompleted},
		{StatusConfirmed, StatusPending},
	}
	for _, tr := range denied {
		assert.False(t, tr.from.CanTransitionTo(tr.to), "%s -> %s should be illegal", tr.from, tr.to)
	}
}
