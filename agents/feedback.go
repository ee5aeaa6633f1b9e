package agents

import (
	"fmt"

	"github.com/hupe1980/supportmesh/commerce"
	"github.com/hupe1980/supportmesh/workflow"
)

const feedbackAckSystem = "You are a support agent thanking a customer for their feedback. " +
	"Write one or two warm sentences acknowledging what they said. Do not make promises about product changes."

// distressWords are the phrases that route feedback straight to a human
// instead of an automated thank-you.
var distressWords = []string{"lawyer", "chargeback", "furious", "legal action", "sue you"}

// Feedback records customer feedback and thanks them for it. Messages showing
// real distress skip the automated path entirely and go to a person.
func Feedback() *workflow.Workflow {
	return workflow.New(KeyFeedback, "General feedback, complaints and praise.").
		Step("triage", feedbackTriage).
		Step("record", feedbackRecord).
		Entry("triage")
}

func feedbackTriage(tc *workflow.TurnContext) (workflow.StepResult, error) {
	if containsAny(tc.Message.Content, distressWords...) {
		return workflow.Escalate{
			Reason:            "customer_distress",
			Context:           fmt.Sprintf("feedback message indicates serious distress: %q", tc.Message.Content),
			RecommendedAction: "have a senior agent reach out personally as soon as possible",
		}, nil
	}
	return workflow.Goto{Step: "record"}, nil
}

func feedbackRecord(tc *workflow.TurnContext) (workflow.StepResult, error) {
	result, err := tc.Invoke(commerce.ToolRecordFeedback, map[string]any{"text": tc.Message.Content})
	if err != nil || !result.Success {
		detail := result.Error
		if err != nil {
			detail = err.Error()
		}
		// Thanking the customer for feedback that was never recorded would be
		// a lie; hand it to a person instead.
		return workflow.Escalate{
			Reason:            "feedback_record_failed",
			Context:           fmt.Sprintf("record_feedback failed: %s", detail),
			RecommendedAction: "log the feedback manually and follow up with the customer",
		}, nil
	}

	ack, err := tc.Generate(feedbackAckSystem)
	if err != nil {
		// Recording succeeded; a generation hiccup shouldn't cost the customer
		// a reply.
		ack = "Thank you so much for taking the time to share this — I've passed it along to the team."
	}
	return workflow.Respond{Text: ack, Resolution: "resolved"}, nil
}
