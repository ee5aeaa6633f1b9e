package agents

import (
	"fmt"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/workflow"
)

const lookupFailuresKey = "lookup_failures"

// Wismo answers "where is my order" questions. It needs exactly one slot — the
// order id — and suspends on awaiting_order_id until it has one. Two
// consecutive lookup failures hand the conversation to a human; a success in
// between resets the counter.
func Wismo() *workflow.Workflow {
	return workflow.New(KeyWismo, "Order status and delivery questions (\"where is my order\", tracking, ETA).").
		Step("extract", wismoExtract).
		Step("awaiting_order_id", wismoAwaitOrderID).
		Step("lookup", wismoLookup).
		Entry("extract")
}

func wismoExtract(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if _, ok := tc.State.Slot("order_id"); ok {
		return workflow.Goto{Step: "lookup"}, nil
	}
	if id := extractOrderID(tc.Message.Content); id != "" {
		tc.State.SetSlot("order_id", id)
		return workflow.Goto{Step: "lookup"}, nil
	}
	return workflow.Ask{
		Prompt: "Happy to check on that! Could you share your order number? It looks like #12345 and is in your confirmation email.",
		Resume: "awaiting_order_id",
	}, nil
}

func wismoAwaitOrderID(tc *workflow.TurnContext) (workflow.StepResult, error) {
	id := extractOrderID(tc.Message.Content)
	if id == "" {
		return workflow.Ask{
			Prompt: "I couldn't spot an order number in that. It's the digits after the # in your confirmation email — could you paste it?",
			Resume: "awaiting_order_id",
		}, nil
	}
	tc.State.SetSlot("order_id", id)
	return workflow.Goto{Step: "lookup"}, nil
}

func wismoLookup(tc *workflow.TurnContext) (workflow.StepResult, error) {
	orderID, _ := tc.State.Slot("order_id")
	result, err := tc.Invoke(commerce.ToolLookupOrder, map[string]any{"order_id": orderID})
	if err != nil || !result.Success {
		failures := tc.State.IntInternal(lookupFailuresKey) + 1
		tc.State.SetInternal(lookupFailuresKey, failures)
		if failures >= 2 {
			detail := result.Error
			if err != nil {
				detail = err.Error()
			}
			return workflow.Escalate{
				Reason:            "lookup_failed",
				Context:           fmt.Sprintf("order lookup failed twice for %q: %s", orderID, detail),
				RecommendedAction: "locate the order manually and reply with its status",
			}, nil
		}
		return workflow.Ask{
			Prompt: fmt.Sprintf("I couldn't find an order %s on your account. Could you double-check the number for me?", orderID),
			Resume: "awaiting_order_id",
		}, nil
	}

	tc.State.SetInternal(lookupFailuresKey, 0)
	return workflow.Respond{Text: orderStatusLine(result.Data), Resolution: "resolved"}, nil
}

// orderStatusLine renders a customer-facing status sentence from a
// lookup_order payload.
func orderStatusLine(data map[string]any) string {
	id, _ := data["order_id"].(string)
	status, _ := data["status"].(string)
	switch status {
	case commerce.StatusShipped:
		carrier, _ := data["carrier"].(string)
		tracking, _ := data["tracking"].(string)
		if carrier != "" {
			return fmt.Sprintf("Order #%s is on its way with %s — tracking number %s.", id, carrier, tracking)
		}
		return fmt.Sprintf("Order #%s has shipped and is on its way to you.", id)
	case commerce.StatusDelivered:
		if at, ok := data["delivered_at"].(string); ok {
			return fmt.Sprintf("Order #%s was delivered on %s. Let me know if it hasn't turned up!", id, at)
		}
		return fmt.Sprintf("Order #%s shows as delivered. Let me know if it hasn't turned up!", id)
	case commerce.StatusCancelled:
		return fmt.Sprintf("Order #%s was cancelled — you shouldn't be charged for it.", id)
	default:
		return fmt.Sprintf("Order #%s is still being prepared in our warehouse. You'll get a shipping confirmation as soon as it leaves.", id)
	}
}
