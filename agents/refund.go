package agents

import (
	"fmt"
	"time"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/workflow"
)

// refundWindow is how long after delivery an order stays refundable.
const refundWindow = 30 * 24 * time.Hour

// Refund handles money-back requests. Identity must validate before any
// account-affecting action runs; an order that has not arrived yet gets a
// status line borrowed from wismo instead of a refund, and one outside the
// window gets a goodwill discount instead.
func Refund() *workflow.Workflow {
	return workflow.New(KeyRefund, "Refund and money-back requests for an order.").
		Step("validate", refundValidate).
		Step("collect_order", refundCollectOrder).
		Step("awaiting_order_id", refundAwaitOrderID).
		Step("lookup", refundLookup).
		Step("issue", refundIssue).
		Step("offer_discount", refundOfferDiscount).
		Entry("validate")
}

func refundValidate(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if err := tc.State.CustomerInfo.Validate(); err != nil {
		return workflow.Escalate{
			Reason:            core.ReasonMissingRequiredField,
			Context:           fmt.Sprintf("refund requested without a verified customer email: %v", err),
			RecommendedAction: "verify the customer's identity, then process the refund manually",
		}, nil
	}
	return workflow.Goto{Step: "collect_order"}, nil
}

func refundCollectOrder(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if _, ok := tc.State.Slot("order_id"); ok {
		return workflow.Goto{Step: "lookup"}, nil
	}
	if id := extractOrderID(tc.Message.Content); id != "" {
		tc.State.SetSlot("order_id", id)
		return workflow.Goto{Step: "lookup"}, nil
	}
	return workflow.Ask{
		Prompt: "I can help with that refund. Which order is it for? The order number looks like #12345.",
		Resume: "awaiting_order_id",
	}, nil
}

func refundAwaitOrderID(tc *workflow.TurnContext) (workflow.StepResult, error) {
	id := extractOrderID(tc.Message.Content)
	if id == "" {
		return workflow.Ask{
			Prompt: "I still need the order number to process a refund — it's the digits after the # in your confirmation email.",
			Resume: "awaiting_order_id",
		}, nil
	}
	tc.State.SetSlot("order_id", id)
	return workflow.Goto{Step: "lookup"}, nil
}

func refundLookup(tc *workflow.TurnContext) (workflow.StepResult, error) {
	orderID, _ := tc.State.Slot("order_id")
	result, err := tc.Invoke(commerce.ToolLookupOrder, map[string]any{"order_id": orderID})
	if err != nil || !result.Success {
		detail := result.Error
		if err != nil {
			detail = err.Error()
		}
		return workflow.Escalate{
			Reason:            "lookup_failed",
			Context:           fmt.Sprintf("could not look up order %q for a refund: %s", orderID, detail),
			RecommendedAction: "locate the order manually and process the refund",
		}, nil
	}

	status, _ := result.Data["status"].(string)
	if status != commerce.StatusDelivered {
		statusLine, err := tc.Delegate(KeyWismo, fmt.Sprintf("Where is order #%s?", orderID))
		if err != nil {
			return nil, err
		}
		return workflow.Respond{
			Text:       "We can only refund an order once it has been delivered. " + statusLine + " If anything's wrong when it arrives, just reply here and I'll sort out the refund.",
			Resolution: "resolved",
		}, nil
	}

	if at, ok := result.Data["delivered_at"].(string); ok {
		delivered, perr := time.Parse(time.RFC3339, at)
		if perr == nil && time.Since(delivered) > refundWindow {
			return workflow.Goto{Step: "offer_discount"}, nil
		}
	}
	return workflow.Goto{Step: "issue"}, nil
}

func refundIssue(tc *workflow.TurnContext) (workflow.StepResult, error) {
	orderID, _ := tc.State.Slot("order_id")
	result, err := tc.Invoke(commerce.ToolIssueRefund, map[string]any{"order_id": orderID})
	if err != nil || !result.Success {
		detail := result.Error
		if err != nil {
			detail = err.Error()
		}
		return workflow.Escalate{
			Reason:            "refund_failed",
			Context:           fmt.Sprintf("issue_refund failed for order %q: %s", orderID, detail),
			RecommendedAction: "issue the refund manually through the payments console",
		}, nil
	}

	cents := 0
	if v, ok := result.Data["refunded_cents"].(int); ok {
		cents = v
	} else if v, ok := result.Data["refunded_cents"].(float64); ok {
		cents = int(v)
	}
	return workflow.Respond{
		Text:       fmt.Sprintf("Done — I've refunded $%.2f for order #%s. You'll see it on your statement within 5–10 business days.", float64(cents)/100, orderID),
		Resolution: "resolved",
	}, nil
}

func refundOfferDiscount(tc *workflow.TurnContext) (workflow.StepResult, error) {
	orderID, _ := tc.State.Slot("order_id")
	offer, err := tc.Delegate(KeyDiscount, "Please offer this customer a goodwill discount.")
	if err != nil {
		return nil, err
	}
	// The delegated run only saw a scoped state copy; latch the
	// one-discount-per-conversation flag on the state that commits.
	tc.State.SetInternal(discountAppliedKey, true)
	return workflow.Respond{
		Text:       fmt.Sprintf("Order #%s was delivered more than 30 days ago, which is outside our refund window — sorry about that. As an apology: %s", orderID, offer),
		Resolution: "resolved",
	}, nil
}
