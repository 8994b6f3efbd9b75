// Package providers implements the Reviewer interface for each supported
// review backend.
//
// Supported providers: any OpenAI-compatible chat completions API (DeepSeek
// by default), Anthropic, Google Gemini through the genai SDK, and Ollama /
// LM Studio for local models.
//
// All providers share a retry helper with exponential back-off for rate
// limits and server errors. Authentication failures are never retried and
// can be detected with [IsAuthError].
//
// Use [New] to obtain a Reviewer from [Settings].
package providers
