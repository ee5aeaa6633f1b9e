package commerce

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/tool"
)

func call(t *testing.T, b *Backend, action string, args map[string]any) tool.Result {
	t.Helper()
	result, err := b.Tool(action).Call(context.Background(), args)
	require.NoError(t, err)
	return result
}

func TestBackend_LookupOrder(t *testing.T) {
	b := NewBackend()
	b.SeedOrder(Order{ID: "43189", Status: StatusShipped, Carrier: "DHL", Tracking: "JD0146"})

	result := call(t, b, ToolLookupOrder, map[string]any{"order_id": "#43189"})
	require.True(t, result.Success, "ids normalize: leading # and case are ignored")
	assert.Equal(t, StatusShipped, result.Data["status"])
	assert.Equal(t, "DHL", result.Data["carrier"])

	result = call(t, b, ToolLookupOrder, map[string]any{"order_id": "99999"})
	assert.False(t, result.Success)
	assert.Equal(t, "order not found", result.Error)
}

func TestBackend_IssueRefund(t *testing.T) {
	b := NewBackend()
	b.SeedOrder(Order{ID: "51022", Status: StatusDelivered, TotalCents: 4999})

	result := call(t, b, ToolIssueRefund, map[string]any{"order_id": "51022"})
	require.True(t, result.Success)
	assert.EqualValues(t, 4999, result.Data["refunded_cents"])
	assert.NotEmpty(t, result.Data["refund_id"])

	// Double refunds are the action's own reported failure.
	result = call(t, b, ToolIssueRefund, map[string]any{"order_id": "51022"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "already fully refunded")
}

func TestBackend_UpdateSubscription(t *testing.T) {
	b := NewBackend()
	b.SeedSubscription(Subscription{Email: "jo@example.com", Plan: "monthly", Status: "active"})

	result := call(t, b, ToolUpdateSubscription, map[string]any{"email": "JO@example.com", "action": "pause"})
	require.True(t, result.Success)
	assert.Equal(t, "paused", result.Data["status"])

	result = call(t, b, ToolUpdateSubscription, map[string]any{"email": "jo@example.com", "action": "explode"})
	assert.False(t, result.Success)
}

func TestBackend_ApplyDiscountBounds(t *testing.T) {
	b := NewBackend()

	result := call(t, b, ToolApplyDiscount, map[string]any{"percent": 15})
	require.True(t, result.Success)
	assert.Contains(t, result.Data["code"], "SAVE15-")

	for _, pct := range []int{0, -5, 80} {
		result = call(t, b, ToolApplyDiscount, map[string]any{"percent": pct})
		assert.False(t, result.Success, "percent %d must be rejected", pct)
	}
}

func TestBackend_UpdateAddressOnlyBeforeShipment(t *testing.T) {
	b := NewBackend()
	b.SeedOrder(Order{ID: "60750", Status: StatusProcessing})
	b.SeedOrder(Order{ID: "43189", Status: StatusShipped})

	result := call(t, b, ToolUpdateAddress, map[string]any{"order_id": "60750", "address": "12 North Lane"})
	assert.True(t, result.Success)

	result = call(t, b, ToolUpdateAddress, map[string]any{"order_id": "43189", "address": "12 North Lane"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "carrier")
}

func TestBackend_FailureInjection(t *testing.T) {
	b := NewBackend()
	b.SeedOrder(Order{ID: "43189", Status: StatusShipped})
	b.FailNext(ToolLookupOrder, 1)

	_, err := b.Tool(ToolLookupOrder).Call(context.Background(), map[string]any{"order_id": "43189"})
	require.Error(t, err)
	var toolErr *tool.Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "TRANSPORT", toolErr.Code)

	// Injection is consumed; the next call succeeds.
	result := call(t, b, ToolLookupOrder, map[string]any{"order_id": "43189"})
	assert.True(t, result.Success)
}
