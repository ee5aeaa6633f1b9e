package agents

import (
	"fmt"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/workflow"
)

const (
	discountAppliedKey = "discount_applied"
	goodwillPercent    = 15
)

// Discount applies a one-off goodwill promo code. Strictly one per
// conversation: a repeat request gets a polite refusal, never a second code.
func Discount() *workflow.Workflow {
	return workflow.New(KeyDiscount, "Goodwill discounts and promo codes.").
		Step("apply", discountApply).
		Entry("apply")
}

func discountApply(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if applied, _ := tc.State.GetInternal(discountAppliedKey); applied == true {
		return workflow.Respond{
			Text:       "I've already applied a discount code on this conversation, and I can only issue one — but it's still valid if you haven't used it yet!",
			Resolution: "resolved",
		}, nil
	}

	result, err := tc.Invoke(commerce.ToolApplyDiscount, map[string]any{"percent": goodwillPercent})
	if err != nil || !result.Success {
		detail := result.Error
		if err != nil {
			detail = err.Error()
		}
		return workflow.Escalate{
			Reason:            "discount_failed",
			Context:           fmt.Sprintf("apply_discount failed: %s", detail),
			RecommendedAction: "issue a promo code manually from the marketing console",
		}, nil
	}

	tc.State.SetInternal(discountAppliedKey, true)
	code, _ := result.Data["code"].(string)
	return workflow.Respond{
		Text:       fmt.Sprintf("Here's a %d%% discount code for your next order: %s. It's valid for 30 days — just enter it at checkout.", goodwillPercent, code),
		Resolution: "resolved",
	}, nil
}
