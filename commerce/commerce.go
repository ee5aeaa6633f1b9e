// Package commerce provides the external action tools workflows act through:
// order lookup, refunds, subscription changes, discounts, address and account
// updates, and feedback capture. Two interchangeable backends exist — an
// HTTP client speaking the uniform action contract against real commerce
// endpoints, and an in-memory Backend for tests and the offline demo. The
// engine only ever sees tool.Tool values; tracing and failure policy live
// upstream.
package commerce

// Tool names, the identifiers recorded in tool traces.
const (
	ToolLookupOrder        = "lookup_order"
	ToolIssueRefund        = "issue_refund"
	ToolUpdateSubscription = "update_subscription"
	ToolApplyDiscount      = "apply_discount"
	ToolUpdateAddress      = "update_address"
	ToolUpdateAccount      = "update_account"
	ToolRecordFeedback     = "record_feedback"
)

// AllTools lists every action name a toolset must provide.
var AllTools = []string{
	ToolLookupOrder,
	ToolIssueRefund,
	ToolUpdateSubscription,
	ToolApplyDiscount,
	ToolUpdateAddress,
	ToolUpdateAccount,
	ToolRecordFeedback,
}
