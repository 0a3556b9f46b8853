package services

import (
	"strings"

	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/logger"
)

// defaultPrompts are the built-in prompt templates. Placeholders use the
// {{name}} form and are substituted by renderPrompt.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptSummarySystem: `You are an expert summarizer. You read the comment section of a YouTube video and describe what viewers are saying: the main themes, points of praise, criticism, recurring questions and notable disagreements. Be faithful to the comments and do not invent opinions.`,

	driven.PromptSummary: `Summarize the following YouTube comments for the video "{{title}}" ({{views}} views, {{likes}} likes).
The sample below holds {{count}} of the most-liked comments, formatted as [likes] text.

{{comments}}

Write a short summary of a few paragraphs.`,

	driven.PromptAnswerSystem: `You answer questions about a YouTube video's comment section. Use only the video summary and the related comments you are given. If they do not contain the answer, say so.`,

	driven.PromptAnswer: `Video Summary:
{{summary}}

Related Comments:
{{comments}}

Question: {{question}}

Based on the summary and related comments, please provide a clear, concise answer.`,

	driven.PromptPlanSystem: `You are a retrieval planner for a question answering agent over YouTube comments. Reply with one JSON object and nothing else, using these fields: {"need_comments": bool, "need_summary": bool, "prefer_recent": bool, "top_k": int, "per_query_k": int, "rerank": bool, "query_rewrites": [string], "min_keywords": [string], "answer_instructions": string, "rationale": string}.`,

	driven.PromptPlan: `Video Title: {{title}}
Summary: {{summary}}

User Question: {{question}}

Guidelines:
- If the question asks about opinions or consensus, prefer comments.
- If it asks about facts in the video itself, the summary may be enough.
- Give 2-5 query_rewrites that will retrieve the most relevant comments.
- Keep per_query_k small (3-7) and set top_k to the final merged size.
- Set rerank to true when the question is long or nuanced.
- answer_instructions should steer the final answer, for example "cite the top 3 comments" or "summarize the consensus".`,

	driven.PromptRerankSystem: `You are a reranker. Given a question and candidate comments, give each candidate a relevance score from 0 to 10. Reply with one JSON object of the form {"scores": [{"idx": int, "score": number}]} sorted by score, highest first.`,

	driven.PromptRerank: `Question: {{question}}
Candidates:
{{candidates}}`,

	driven.PromptCoverageSystem: `You are a coverage checker. Decide whether the comments shown are enough to answer the question. Reply with one JSON object of the form {"need_more": bool, "reason": string, "new_queries": [string]}. Only add new_queries when something important is missing.`,

	driven.PromptCoverage: `Question: {{question}}
Current Comments (sample):
{{comments}}`,

	driven.PromptAgentAnswer: `Use the video metadata, the summary, the selected comments and the sentiment figures to answer accurately and concisely. If the information is insufficient, say so and suggest what else is needed.

Answer Instructions:
{{instructions}}

Video Information:
- Title: {{title}}
- Published At: {{published}}
- Views: {{views}}
- Likes: {{likes}}
- URL: {{url}}
- Thumbnail: {{thumbnail}}

Video Summary:
{{summary}}

Related Comments:
{{comments}}

Comment Insights:
- Total Comments Fetched: {{total}}
- Sentiment: {{sentiment}}

Question:
{{question}}

Give a clear and grounded answer. Prefer the consensus of the comments when relevant. If you refer to comments, do so naturally, for example "several viewers mentioned". Do not invent details.`,
}

// DefaultPrompts returns a copy of the built-in prompt templates.
func DefaultPrompts() map[string]string {
	out := make(map[string]string, len(defaultPrompts))
	for k, v := range defaultPrompts {
		out[k] = v
	}
	return out
}

// promptLoader resolves templates from an optional PromptStore.
type promptLoader struct {
	store driven.PromptStore
}

// load returns the named template, falling back to the built-in default.
func (p *promptLoader) load(name string) string {
	fallback := defaultPrompts[name]
	if p == nil || p.store == nil {
		return fallback
	}
	prompt, err := p.store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		if err != nil {
			logger.Warn("Prompt %q unavailable, using default: %v", name, err)
		}
		return fallback
	}
	return prompt
}

// renderPrompt substitutes {{key}} placeholders in template.
func renderPrompt(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
