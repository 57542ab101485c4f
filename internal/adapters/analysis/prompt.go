package analysis

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a meticulous code reviewer. Reply with a single JSON object and nothing else."

func buildPrompt(fileName, content string, truncated bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following code file and identify issues.\nFile: %s\n", fileName)
	if truncated {
		b.WriteString("Only the beginning of the file is shown.\n")
	}
	b.WriteString("\nCode:\n")
	b.WriteString(content)
	b.WriteString(`

For each issue, provide:
- type (style, bug, performance, best_practice)
- line number
- description
- suggestion

Return the response in JSON format like this:
{
  "issues": [
    {
      "type": "style",
      "line": 1,
      "description": "Example issue",
      "suggestion": "Example suggestion"
    }
  ]
}
Return {"issues": []} when the file has no issues.
`)
	return b.String()
}
