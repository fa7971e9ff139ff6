package drool

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dlange/brdgen/internal/agent"
	"github.com/dlange/brdgen/internal/corpus"
)

// verdictAgent answers per-path from a script; unscripted paths error.
type verdictAgent struct {
	verdicts map[string]string
}

func (a *verdictAgent) Invoke(ctx context.Context, messages []agent.Message) (*agent.Reply, error) {
	prompt := messages[len(messages)-1].Content
	for path, reply := range a.verdicts {
		if strings.Contains(prompt, "FILE: "+path) {
			return agent.TextReply(reply), nil
		}
	}
	return nil, errors.New("classifier unavailable")
}

func setupCorpus(t *testing.T, files map[string]string) *corpus.Reader {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return corpus.NewReader(dir, 50)
}

func TestFilterFiles(t *testing.T) {
	reader := setupCorpus(t, map[string]string{
		"auth.drl":    "authentication rules",
		"billing.drl": "billing rules",
	})
	classifier := &verdictAgent{verdicts: map[string]string{
		"auth.drl":    `{"include": true, "reason": "matches query"}`,
		"billing.drl": `{"include": false, "reason": "unrelated"}`,
	}}

	f := NewFilter(classifier, reader)
	res := f.FilterFiles(context.Background(), "document authentication", []string{"auth.drl", "billing.drl"})

	if len(res.Included) != 1 || res.Included[0] != "auth.drl" {
		t.Errorf("Included = %v", res.Included)
	}
	if len(res.Excluded) != 1 || res.Excluded[0] != "billing.drl" {
		t.Errorf("Excluded = %v", res.Excluded)
	}
}

func TestFilterFiles_ClassifierErrorFailsOpen(t *testing.T) {
	reader := setupCorpus(t, map[string]string{"rules.drl": "rules"})
	f := NewFilter(&verdictAgent{}, reader)

	res := f.FilterFiles(context.Background(), "query", []string{"rules.drl"})
	if len(res.Included) != 1 {
		t.Errorf("classifier error must include the file, got Included=%v Excluded=%v", res.Included, res.Excluded)
	}
}

func TestFilterFiles_UnreadableExcluded(t *testing.T) {
	reader := setupCorpus(t, nil)
	f := NewFilter(&verdictAgent{}, reader)

	res := f.FilterFiles(context.Background(), "query", []string{"missing.drl"})
	if len(res.Excluded) != 1 {
		t.Errorf("unreadable file should be excluded, got %v", res)
	}
}

func TestFilterFiles_Empty(t *testing.T) {
	f := NewFilter(&verdictAgent{}, setupCorpus(t, nil))

	res := f.FilterFiles(context.Background(), "query", nil)
	if len(res.Included) != 0 || len(res.Excluded) != 0 {
		t.Errorf("empty input should yield empty result, got %v", res)
	}
}

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		want    bool
		wantErr bool
	}{
		{"bare json", `{"include": true, "reason": "ok"}`, true, false},
		{"fenced", "```json\n{\"include\": false, \"reason\": \"no\"}\n```", false, false},
		{"prose around", `Sure. {"include": true, "reason": "related"} Hope that helps.`, true, false},
		{"no json", "I cannot decide", false, true},
		{"broken json", `{"include": `, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := parseVerdict(tc.text)
			if tc.wantErr {
				if err == nil {
					t.Error("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict: %v", err)
			}
			if v.Include != tc.want {
				t.Errorf("Include = %v, want %v", v.Include, tc.want)
			}
		})
	}
}
