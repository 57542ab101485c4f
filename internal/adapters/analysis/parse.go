package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/target/prreview-api/internal/domain/model"
)

const maxRawInError = 512

// ParseError reports provider output that is not a valid analysis document.
type ParseError struct {
	Reason string
	// Raw is a prefix of the offending output.
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed analysis output: %s: %v", e.Reason, e.Err)
	}
	return "malformed analysis output: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(reason, raw string, err error) *ParseError {
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError]
	}
	return &ParseError{Reason: reason, Raw: raw, Err: err}
}

type rawIssue struct {
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Line        lineNum `json:"line"`
	Description string  `json:"description"`
	Suggestion  string  `json:"suggestion"`
}

type rawAnalysis struct {
	Issues *[]rawIssue `json:"issues"`
}

// lineNum accepts a JSON number, a numeric string, or null. The value must be
// integral and fit in an int32.
type lineNum int

func (l *lineNum) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*l = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("line %s is not a number", string(b))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return fmt.Errorf("line %s is not an integer", string(b))
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return fmt.Errorf("line %s is out of range", string(b))
	}
	*l = lineNum(f)
	return nil
}

// ParseAnalysis validates provider output and converts it into a FileAnalysis.
// The document must be a JSON object with an "issues" array; each issue needs a
// known category (given as "type" or "category"), a non-negative line and a
// description. Markdown code fences around the document are tolerated. Any
// violation yields a *ParseError.
func ParseAnalysis(text string) (*model.FileAnalysis, error) {
	body := stripCodeFence(text)
	if body == "" {
		return nil, newParseError("empty output", text, nil)
	}

	var doc rawAnalysis
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&doc); err != nil {
		return nil, newParseError("invalid JSON", text, err)
	}
	if dec.More() {
		return nil, newParseError("trailing data after JSON document", text, nil)
	}
	if doc.Issues == nil {
		return nil, newParseError(`missing "issues" array`, text, nil)
	}

	issues := make([]model.Issue, 0, len(*doc.Issues))
	for i, ri := range *doc.Issues {
		issue, err := ri.toIssue()
		if err != nil {
			return nil, newParseError(fmt.Sprintf("issue %d", i), text, err)
		}
		issues = append(issues, issue)
	}
	return &model.FileAnalysis{Issues: issues}, nil
}

func (ri rawIssue) toIssue() (model.Issue, error) {
	cat := ri.Category
	if cat == "" {
		cat = ri.Type
	}
	if cat == "" {
		return model.Issue{}, errors.New("category is required")
	}

	var category model.IssueCategory
	if err := category.UnmarshalText([]byte(cat)); err != nil {
		return model.Issue{}, err
	}
	issue := model.Issue{
		Category:    category,
		Line:        int(ri.Line),
		Description: strings.TrimSpace(ri.Description),
		Suggestion:  strings.TrimSpace(ri.Suggestion),
	}
	if err := issue.Validate(); err != nil {
		return model.Issue{}, err
	}
	return issue, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line, which may carry a language tag.
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		return ""
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
