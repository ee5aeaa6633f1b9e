package agents

import (
	"fmt"

	"github.com/hupe1980/supportmesh/workflow"
)

const productQASystem = "You are a friendly product specialist for an online store. " +
	"Answer the customer's product question concisely and honestly based on the conversation. " +
	"If you genuinely don't know, say so and offer to find out — never invent specifications."

// ProductQA answers product questions with generated text. It is the only
// workflow with no structured branch at all: no slots, no tools, just the
// collaborator grounded on the transcript.
func ProductQA() *workflow.Workflow {
	return workflow.New(KeyProductQA, "Product questions: features, sizing, compatibility, materials.").
		Step("answer", productQAAnswer).
		Entry("answer")
}

func productQAAnswer(tc *workflow.TurnContext) (workflow.StepResult, error) {
	text, err := tc.Generate(productQASystem)
	if err != nil {
		return workflow.Escalate{
			Reason:            "generation_failed",
			Context:           fmt.Sprintf("could not generate a product answer: %v", err),
			RecommendedAction: "answer the product question manually",
		}, nil
	}
	return workflow.Respond{Text: text, Resolution: "resolved"}, nil
}
