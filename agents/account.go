package agents

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/workflow"
)

// Account updates the contact email on the customer's account. The new
// address is validated before any change is attempted; garbage input re-asks
// instead of writing.
func Account() *workflow.Workflow {
	return workflow.New(KeyAccount, "Account changes: update the contact email address.").
		Step("collect", accountCollect).
		Step("awaiting_new_email", accountAwaitEmail).
		Step("apply", accountApply).
		Entry("collect")
}

func accountCollect(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if email := extractEmail(tc.Message.Content); email != "" && validEmail(email) {
		tc.State.SetSlot("new_email", email)
		return workflow.Goto{Step: "apply"}, nil
	}
	return workflow.Ask{
		Prompt: "Of course — what should the new email address on your account be?",
		Resume: "awaiting_new_email",
	}, nil
}

func accountAwaitEmail(tc *workflow.TurnContext) (workflow.StepResult, error) {
	email := extractEmail(tc.Message.Content)
	if email == "" || !validEmail(email) {
		return workflow.Ask{
			Prompt: "Hmm, that doesn't look like a valid email address. Could you type it out in full, like name@example.com?",
			Resume: "awaiting_new_email",
		}, nil
	}
	tc.State.SetSlot("new_email", email)
	return workflow.Goto{Step: "apply"}, nil
}

func accountApply(tc *workflow.TurnContext) (workflow.StepResult, error) {
	email, _ := tc.State.Slot("new_email")
	result, err := tc.Invoke(commerce.ToolUpdateAccount, map[string]any{"email": email})
	if err != nil || !result.Success {
		detail := result.Error
		if err != nil {
			detail = err.Error()
		}
		return workflow.Escalate{
			Reason:            "account_update_failed",
			Context:           fmt.Sprintf("update_account failed for new email %q: %s", email, detail),
			RecommendedAction: "update the account email manually after verifying the customer",
		}, nil
	}

	tc.State.CustomerInfo.Email = email
	return workflow.Respond{
		Text:       fmt.Sprintf("Done — your account email is now %s. All order updates will go there from now on.", email),
		Resolution: "resolved",
	}, nil
}

func validEmail(email string) bool {
	return validation.Validate(email, validation.Required, is.Email) == nil
}
