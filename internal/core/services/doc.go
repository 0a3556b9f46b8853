// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The analysis pipeline lives here: sentiment aggregation, summary prompt
// construction, embedding index construction, cosine retrieval and question
// answering. Services depend only on domain types and port interfaces.
package services
