// Package findings turns freeform review text into a structured report.
//
// Classification is a shallow lexical pass driven by a [Vocabulary]: lines
// that mention a problem keyword become issues, lines that propose a change
// become suggestions, and tiered keyword lists grade severity and priority.
// The model's output is never parsed as structured data, so every label here
// is a best-effort signal. The built-in vocabulary can be overridden from a
// YAML file with [LoadVocabulary].
package findings
