// Package config loads and merges commitgate configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (API_KEY, AI_MODEL, AI_OUTPUT_MODE, etc.)
//  3. Project .env file
//  4. User global file (~/.ai-codereview.env)
//  5. Installation global file (<exe dir>/.ai-codereview.env)
//  6. Package default file (<exe dir>/.env)
//  7. Built-in defaults
//
// Files are parsed with godotenv and never written into the process
// environment. Use [Load] to obtain a merged [Config] and [WriteTemplate]
// to create a starter file.
package config
