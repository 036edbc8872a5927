// Package models lists the OpenAI text-to-speech models available to an API
// key, so the right value for --openai-model can be picked.
package models
