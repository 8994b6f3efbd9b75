// Package redact removes secrets from diffs and file content before they are
// sent to a review provider.
//
// Detection uses regex heuristics: API keys, JWTs, private keys, AWS
// credentials, bearer tokens, database connection strings and
// provider-specific tokens. Files whose paths match a policy glob (.env,
// *.pem and similar) are withheld entirely. Every redaction is counted by
// kind in a [Report].
package redact
