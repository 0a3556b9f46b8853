package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to the built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSummarySystem is the system message for summary generation.
	PromptSummarySystem = "summary_system"

	// PromptSummary builds the summary request. Placeholders are
	// {{title}}, {{views}}, {{likes}}, {{count}} and {{comments}}.
	PromptSummary = "summary"

	// PromptAnswerSystem is the system message for follow-up answers.
	PromptAnswerSystem = "answer_system"

	// PromptAnswer builds the answer request. Placeholders are
	// {{summary}}, {{comments}} and {{question}}.
	PromptAnswer = "answer"

	// PromptPlanSystem is the system message for agent retrieval planning.
	PromptPlanSystem = "plan_system"

	// PromptPlan asks for a retrieval plan. Placeholders are
	// {{title}}, {{summary}} and {{question}}.
	PromptPlan = "plan"

	// PromptRerankSystem is the system message for candidate reranking.
	PromptRerankSystem = "rerank_system"

	// PromptRerank lists candidates to score. Placeholders are
	// {{question}} and {{candidates}}.
	PromptRerank = "rerank"

	// PromptCoverageSystem is the system message for the coverage check.
	PromptCoverageSystem = "coverage_system"

	// PromptCoverage asks whether the selected comments suffice.
	// Placeholders are {{question}} and {{comments}}.
	PromptCoverage = "coverage"

	// PromptAgentAnswer builds the agent's final answer request.
	// Placeholders are {{instructions}}, {{title}}, {{published}},
	// {{views}}, {{likes}}, {{url}}, {{thumbnail}}, {{summary}},
	// {{comments}}, {{total}}, {{sentiment}} and {{question}}.
	PromptAgentAnswer = "agent_answer"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use built-in default prompts.
	SetPromptStore(store PromptStore)
}
