package parser

import "strings"

// languageAliases maps common fence info strings to canonical names.
var languageAliases = map[string]string{
	"golang":     "go",
	"js":         "javascript",
	"jsx":        "javascript",
	"ts":         "typescript",
	"tsx":        "typescript",
	"py":         "python",
	"python3":    "python",
	"rb":         "ruby",
	"sh":         "bash",
	"shell":      "bash",
	"zsh":        "bash",
	"yml":        "yaml",
	"c++":        "cpp",
	"c#":         "csharp",
	"cs":         "csharp",
	"kt":         "kotlin",
	"rs":         "rust",
	"md":         "markdown",
	"dockerfile": "docker",
	"plaintext":  "text",
	"txt":        "text",
}

// NormalizeLanguage lowercases a fence language tag and resolves aliases.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return ""
	}
	// Info strings may carry attributes after the language ("go {hl=1}").
	if i := strings.IndexAny(lang, " \t{"); i >= 0 {
		lang = lang[:i]
	}
	if canonical, ok := languageAliases[lang]; ok {
		return canonical
	}
	return lang
}
