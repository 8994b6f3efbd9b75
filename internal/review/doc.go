// Package review runs the analysis pipeline over staged changes.
//
// Each relevant file is reviewed on its own: the diff is sent verbatim with
// a truncated copy of the full file as context. Files with an empty diff are
// skipped and a file whose request fails is logged and left out, so one bad
// file never aborts the batch. Only a service that cannot be constructed at
// all surfaces as an [InitError].
//
// Responses are cached by a hash of provider, model, system prompt and user
// prompt. Secrets are redacted before anything leaves the process.
package review
