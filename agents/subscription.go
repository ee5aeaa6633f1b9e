package agents

import (
	"fmt"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/workflow"
)

// Subscription pauses, resumes or cancels the customer's plan. An ambiguous
// request ("I want to stop my subscription") asks whether they mean pause or
// cancel before anything is changed.
func Subscription() *workflow.Workflow {
	return workflow.New(KeySubscription, "Subscription management: pause, resume or cancel a plan.").
		Step("decide", subscriptionDecide).
		Step("awaiting_subscription_action", subscriptionAwaitAction).
		Step("apply", subscriptionApply).
		Entry("decide")
}

// parseSubscriptionAction maps free text onto a concrete plan action, or ""
// when the intent is ambiguous.
func parseSubscriptionAction(text string) string {
	switch {
	case containsAny(text, "cancel", "terminate", "end my"):
		return "cancel"
	case containsAny(text, "pause", "hold", "skip", "freeze"):
		return "pause"
	case containsAny(text, "resume", "restart", "unpause", "reactivate"):
		return "resume"
	default:
		return ""
	}
}

func subscriptionDecide(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if action := parseSubscriptionAction(tc.Message.Content); action != "" {
		tc.State.SetSlot("subscription_action", action)
		return workflow.Goto{Step: "apply"}, nil
	}
	return workflow.Ask{
		Prompt: "I can do that — would you like to pause your subscription (keep your plan, skip billing) or cancel it entirely?",
		Resume: "awaiting_subscription_action",
	}, nil
}

func subscriptionAwaitAction(tc *workflow.TurnContext) (workflow.StepResult, error) {
	action := parseSubscriptionAction(tc.Message.Content)
	if action == "" {
		return workflow.Ask{
			Prompt: "Just to be sure I do the right thing: should I pause the subscription or cancel it?",
			Resume: "awaiting_subscription_action",
		}, nil
	}
	tc.State.SetSlot("subscription_action", action)
	return workflow.Goto{Step: "apply"}, nil
}

func subscriptionApply(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if tc.State.CustomerInfo.Email == "" {
		return workflow.Escalate{
			Reason:            core.ReasonMissingRequiredField,
			Context:           "subscription change requested but no customer email is on file",
			RecommendedAction: "verify the customer's account and apply the change manually",
		}, nil
	}

	action, _ := tc.State.Slot("subscription_action")
	result, err := tc.Invoke(commerce.ToolUpdateSubscription, map[string]any{
		"email":  tc.State.CustomerInfo.Email,
		"action": action,
	})
	if err != nil || !result.Success {
		detail := result.Error
		if err != nil {
			detail = err.Error()
		}
		return workflow.Escalate{
			Reason:            "subscription_update_failed",
			Context:           fmt.Sprintf("update_subscription(%s) failed for %s: %s", action, tc.State.CustomerInfo.Email, detail),
			RecommendedAction: "apply the subscription change manually in the billing console",
		}, nil
	}

	status, _ := result.Data["status"].(string)
	switch status {
	case "paused":
		return workflow.Respond{Text: "Done — your subscription is paused. You won't be billed until you resume it, and nothing else changes.", Resolution: "resolved"}, nil
	case "cancelled":
		return workflow.Respond{Text: "Your subscription has been cancelled. You'll keep access until the end of the current billing period, and there are no further charges.", Resolution: "resolved"}, nil
	default:
		return workflow.Respond{Text: "Done — your subscription is active again. Billing resumes with your next cycle.", Resolution: "resolved"}, nil
	}
}
