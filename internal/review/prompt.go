package review

import (
	"fmt"
	"path/filepath"
	"strings"
)

// contextLimit caps how much of the full file is sent alongside the diff.
const contextLimit = 2000

const defaultSystemPrompt = `You are an expert code reviewer. Analyze the code changes you are given and focus on:
1. Code quality and best practices
2. Potential bugs and security issues
3. Performance improvements
4. Readability and maintainability
5. Test coverage suggestions

Keep the answer short and clear. If there are no problems, briefly confirm that the code looks good.`

// DefaultSystemPrompt returns the built-in review instruction.
func DefaultSystemPrompt() string {
	return defaultSystemPrompt
}

// BuildUserPrompt renders the per-file request: the diff verbatim plus the
// file content, truncated, as context only.
func BuildUserPrompt(filename, diff, content string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "File: %s\n", filename)
	if lang := languageOf(filename); lang != "" {
		fmt.Fprintf(&b, "Language: %s\n", lang)
	}

	b.WriteString("\nChanges:\n```diff\n")
	b.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")

	if content != "" {
		b.WriteString("\nFull file content (for context only):\n```\n")
		b.WriteString(TruncateContext(content))
		b.WriteString("\n```\n")
	}

	b.WriteString("\nPlease analyze these changes and give your feedback.\n")
	return b.String()
}

// TruncateContext cuts content to contextLimit runes and marks the cut.
func TruncateContext(content string) string {
	runes := []rune(content)
	if len(runes) <= contextLimit {
		return content
	}
	return string(runes[:contextLimit]) + "..."
}

var languages = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript/React",
	".jsx":  "JavaScript/React",
	".vue":  "Vue",
	".java": "Java",
	".rb":   "Ruby",
	".php":  "PHP",
	".cpp":  "C++",
	".hpp":  "C++",
	".c":    "C",
	".h":    "C/C++",
}

func languageOf(filename string) string {
	return languages[strings.ToLower(filepath.Ext(filename))]
}
