// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CommentFetcher: Retrieves video metadata and top-level comments
//   - SentimentScorer: Scores comment text locally
//   - LLMService: Writes summaries and answers
//   - EmbeddingService: Embeds comments and questions
//   - SessionStore: Holds analysis sessions until they expire
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - HistoryStore: Analysis history. Without it, nothing is recorded.
//   - PromptStore: Custom prompt templates. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
