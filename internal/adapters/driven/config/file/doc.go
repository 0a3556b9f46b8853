// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - EnvConfigStore: environment variable overrides on top of a ConfigStore
//   - PromptStore: user-editable prompt templates with hot reload
package file
