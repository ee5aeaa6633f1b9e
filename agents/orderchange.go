package agents

import (
	"fmt"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/workflow"
)

// OrderChange updates the shipping address of an order that has not left the
// warehouse yet. Once an order is with the carrier the address is fixed; the
// customer gets a status line (via wismo) explaining why.
func OrderChange() *workflow.Workflow {
	return workflow.New(KeyOrderChange, "Changes to a placed order: shipping address updates before shipment.").
		Step("collect_order", orderChangeCollectOrder).
		Step("awaiting_order_id", orderChangeAwaitOrderID).
		Step("collect_address", orderChangeCollectAddress).
		Step("awaiting_address", orderChangeAwaitAddress).
		Step("apply", orderChangeApply).
		Entry("collect_order")
}

func orderChangeCollectOrder(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if _, ok := tc.State.Slot("order_id"); ok {
		return workflow.Goto{Step: "collect_address"}, nil
	}
	if id := extractOrderID(tc.Message.Content); id != "" {
		tc.State.SetSlot("order_id", id)
		return workflow.Goto{Step: "collect_address"}, nil
	}
	return workflow.Ask{
		Prompt: "Sure — which order would you like to change? The order number looks like #12345.",
		Resume: "awaiting_order_id",
	}, nil
}

func orderChangeAwaitOrderID(tc *workflow.TurnContext) (workflow.StepResult, error) {
	id := extractOrderID(tc.Message.Content)
	if id == "" {
		return workflow.Ask{
			Prompt: "I couldn't spot an order number there — could you paste the digits after the # from your confirmation email?",
			Resume: "awaiting_order_id",
		}, nil
	}
	tc.State.SetSlot("order_id", id)
	return workflow.Goto{Step: "collect_address"}, nil
}

func orderChangeCollectAddress(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if _, ok := tc.State.Slot("new_address"); ok {
		return workflow.Goto{Step: "apply"}, nil
	}
	return workflow.Ask{
		Prompt: "Got it. What's the full new shipping address, including postcode?",
		Resume: "awaiting_address",
	}, nil
}

func orderChangeAwaitAddress(tc *workflow.TurnContext) (workflow.StepResult, error) {
	tc.State.SetSlot("new_address", tc.Message.Content)
	return workflow.Goto{Step: "apply"}, nil
}

func orderChangeApply(tc *workflow.TurnContext) (workflow.StepResult, error) {
	orderID, _ := tc.State.Slot("order_id")
	address, _ := tc.State.Slot("new_address")

	lookup, err := tc.Invoke(commerce.ToolLookupOrder, map[string]any{"order_id": orderID})
	if err != nil || !lookup.Success {
		detail := lookup.Error
		if err != nil {
			detail = err.Error()
		}
		return workflow.Escalate{
			Reason:            "lookup_failed",
			Context:           fmt.Sprintf("could not look up order %q for an address change: %s", orderID, detail),
			RecommendedAction: "locate the order and apply the address change manually",
		}, nil
	}

	status, _ := lookup.Data["status"].(string)
	if status != commerce.StatusProcessing {
		statusLine, derr := tc.Delegate(KeyWismo, fmt.Sprintf("Where is order #%s?", orderID))
		if derr != nil {
			return nil, derr
		}
		return workflow.Respond{
			Text:       "Unfortunately that order has already been handed to the carrier, so the address can't be changed anymore. " + statusLine,
			Resolution: "resolved",
		}, nil
	}

	result, err := tc.Invoke(commerce.ToolUpdateAddress, map[string]any{"order_id": orderID, "address": address})
	if err != nil || !result.Success {
		detail := result.Error
		if err != nil {
			detail = err.Error()
		}
		return workflow.Escalate{
			Reason:            "order_change_failed",
			Context:           fmt.Sprintf("update_address failed for order %q: %s", orderID, detail),
			RecommendedAction: "apply the address change manually before the order ships",
		}, nil
	}
	return workflow.Respond{
		Text:       fmt.Sprintf("All set — order #%s will now ship to: %s.", orderID, address),
		Resolution: "resolved",
	}, nil
}
