// Package drool filters rule files by relevance to the user query before
// the drool manager runs. One LLM call per file returns a structured
// include/exclude verdict; any filtering error fails open (include).
package drool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dlange/brdgen/internal/agent"
	"github.com/dlange/brdgen/internal/corpus"
)

const filterSystemHint = `You are a file relevance filter. Reply with a single JSON object:
{"include": true|false, "reason": "brief explanation"}`

// Verdict is the structured relevance classification for one file.
type Verdict struct {
	Include bool   `json:"include"`
	Reason  string `json:"reason"`
}

// Result partitions the evaluated files.
type Result struct {
	Included []string
	Excluded []string
}

// Filter evaluates file relevance with an injected classifier agent.
type Filter struct {
	classifier agent.Agent
	reader     *corpus.Reader
}

// NewFilter creates a filter using the given classifier agent and corpus
// reader.
func NewFilter(classifier agent.Agent, reader *corpus.Reader) *Filter {
	return &Filter{classifier: classifier, reader: reader}
}

// FilterFiles classifies each path by relevance to the user query.
// Unreadable files are excluded; classification errors include the file --
// better to include too many than to silently drop something important.
func (f *Filter) FilterFiles(ctx context.Context, userQuery string, filePaths []string) Result {
	var res Result
	if len(filePaths) == 0 {
		return res
	}

	for _, path := range filePaths {
		content, err := f.reader.ReadFile(path)
		if err != nil {
			res.Excluded = append(res.Excluded, path)
			continue
		}

		verdict, err := f.classify(ctx, userQuery, path, content)
		if err != nil {
			// Fail open.
			res.Included = append(res.Included, path)
			continue
		}

		if verdict.Include {
			res.Included = append(res.Included, path)
		} else {
			res.Excluded = append(res.Excluded, path)
		}
	}
	return res
}

func (f *Filter) classify(ctx context.Context, userQuery, path, content string) (Verdict, error) {
	prompt := fmt.Sprintf(`%s

Determine if this file contains information relevant to the following user query.

USER QUERY: %s

FILE: %s
CONTENT:
%s

Be CONSERVATIVE -- include files that might be even tangentially related.
Better to include too many than miss something important.`,
		filterSystemHint, userQuery, path, content)

	reply, err := f.classifier.Invoke(ctx, []agent.Message{{Role: "user", Content: prompt}})
	if err != nil {
		return Verdict{}, err
	}

	return parseVerdict(reply.PlainText())
}

// parseVerdict extracts the JSON verdict from the classifier's reply,
// tolerating a fenced code block or surrounding prose.
func parseVerdict(text string) (Verdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Verdict{}, fmt.Errorf("no JSON object in verdict: %q", text)
	}

	var v Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return Verdict{}, fmt.Errorf("parse verdict: %w", err)
	}
	return v, nil
}
