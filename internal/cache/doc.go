// Package cache stores review responses so an unchanged file is not sent to
// the provider twice.
//
// Keys are SHA-256 hashes of the provider, model, system prompt, file name,
// diff and context. Lookups go through an in-memory LRU first and then the
// on-disk JSON entries under $XDG_CACHE_HOME/commitgate (or the OS
// equivalent). Entries older than the TTL are dropped on read. Everything
// cached has already been through secret redaction.
package cache
