package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dlange/brdgen/internal/agent"
	"github.com/dlange/brdgen/internal/guardrail"
	"github.com/dlange/brdgen/internal/outputs"
	"github.com/dlange/brdgen/pkg/models"
)

// promptAgent picks its reply (or error) by substring match on the prompt.
type promptAgent struct {
	rules []promptRule

	mu      sync.Mutex
	prompts []string
}

type promptRule struct {
	contains string
	reply    string
	err      error
}

func (a *promptAgent) Invoke(ctx context.Context, messages []agent.Message) (*agent.Reply, error) {
	prompt := messages[len(messages)-1].Content
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.mu.Unlock()

	for _, r := range a.rules {
		if strings.Contains(prompt, r.contains) {
			if r.err != nil {
				return nil, r.err
			}
			return agent.TextReply(r.reply), nil
		}
	}
	return nil, errors.New("no rule matched")
}

func runGrouped(t *testing.T, model agent.Agent, files []string) (models.ExecutionResult, *outputs.Store) {
	t.Helper()
	managers := textManagers(cleanReviewerReply)
	managers[agent.Model] = model

	store := outputs.NewStore(t.TempDir())
	o := New(testConfig(), Deps{Managers: managers, Store: store, Guardrail: guardrail.New()})
	return o.RunPipeline(context.Background(), "Generate a BRD", files, t.TempDir()), store
}

func TestGroupedManager_ConsolidatesGroups(t *testing.T) {
	model := &promptAgent{rules: []promptRule{
		{contains: "CONSOLIDATION TASK", reply: "MERGED DOCUMENT"},
		{contains: "orders_sheet", reply: "ORDERS SECTION"},
		{contains: "billing_sheet", reply: "BILLING SECTION"},
	}}

	result, store := runGrouped(t, model,
		[]string{"orders_sheet1.csv", "orders_sheet2.csv", "billing_sheet1.csv"})

	if result.Status != models.StatusSuccess {
		t.Fatalf("Status = %s, errors = %v", result.Status, result.Errors)
	}

	if got := store.Read(agent.Model); got != "MERGED DOCUMENT" {
		t.Errorf("stored model output = %q, want consolidated text", got)
	}

	var rollup *models.AgentMessage
	var groupMessages int
	for i, m := range result.Messages {
		if m.AgentID != agent.Model {
			continue
		}
		if m.Metadata["rollup"] == true {
			rollup = &result.Messages[i]
		}
		if _, ok := m.Metadata["group"]; ok {
			groupMessages++
		}
	}
	if groupMessages != 2 {
		t.Errorf("group invocations = %d, want 2", groupMessages)
	}
	if rollup == nil {
		t.Fatal("no rollup message")
	}
	if rollup.Status != models.StatusSuccess {
		t.Errorf("rollup status = %s", rollup.Status)
	}
	if rollup.Metadata["groups"] != 2 {
		t.Errorf("rollup groups = %v", rollup.Metadata["groups"])
	}
}

func TestGroupedManager_GenerationOrderJoin(t *testing.T) {
	// Consolidation fails, so the stored text is the raw concatenation.
	// Group keys sort alphabetically; the join must follow that order no
	// matter which group finishes first.
	model := &promptAgent{rules: []promptRule{
		{contains: "CONSOLIDATION TASK", err: errors.New("consolidation down")},
		{contains: "alpha_sheet", reply: "ALPHA"},
		{contains: "beta_sheet", reply: "BETA"},
	}}

	result, store := runGrouped(t, model,
		[]string{"beta_sheet1.csv", "alpha_sheet1.csv"})

	if result.Status != models.StatusSuccess {
		t.Fatalf("Status = %s", result.Status)
	}
	if got := store.Read(agent.Model); got != "ALPHA"+groupSeparator+"BETA" {
		t.Errorf("stored model output = %q", got)
	}

	for _, m := range result.Messages {
		if m.AgentID == agent.Model && m.Metadata["rollup"] == true {
			if m.Status != models.StatusFallback {
				t.Errorf("rollup status = %s, want fallback after failed consolidation", m.Status)
			}
		}
	}
}

func TestGroupedManager_PartialWhenGroupFails(t *testing.T) {
	model := &promptAgent{rules: []promptRule{
		{contains: "CONSOLIDATION TASK", reply: "MERGED"},
		{contains: "good_sheet", reply: "GOOD SECTION"},
		{contains: "bad_sheet", err: errors.New("group blew up")},
	}}

	result, store := runGrouped(t, model,
		[]string{"good_sheet1.csv", "bad_sheet1.csv"})

	if result.Status != models.StatusSuccess {
		t.Fatalf("Status = %s", result.Status)
	}

	// One surviving section: no consolidation pass, partial rollup.
	if got := store.Read(agent.Model); got != "GOOD SECTION" {
		t.Errorf("stored model output = %q", got)
	}

	var rollupStatus models.MessageStatus
	for _, m := range result.Messages {
		if m.AgentID == agent.Model && m.Metadata["rollup"] == true {
			rollupStatus = m.Status
		}
	}
	if rollupStatus != models.StatusPartial {
		t.Errorf("rollup status = %s, want partial", rollupStatus)
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "model produced partial results") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing partial warning, got %v", result.Warnings)
	}
}

func TestGroupedManager_AllGroupsFailStoresNothing(t *testing.T) {
	model := &promptAgent{rules: []promptRule{
		{contains: "User Query", err: errors.New("always down")},
	}}

	result, store := runGrouped(t, model,
		[]string{"a_sheet1.csv", "b_sheet1.csv"})

	if result.Status != models.StatusSuccess {
		t.Fatalf("failing manager must not abort the run: %s", result.Status)
	}
	if store.Exists(agent.Model) {
		t.Error("no model output should be stored when every group failed")
	}
	for _, m := range result.Messages {
		if m.AgentID == agent.Model && m.Metadata["rollup"] == true {
			t.Error("no rollup message expected when every group failed")
		}
	}
}

func TestGroupedManager_SingleGroupSkipsConsolidation(t *testing.T) {
	model := &promptAgent{rules: []promptRule{
		{contains: "wb_sheet", reply: "ONLY SECTION"},
	}}

	result, store := runGrouped(t, model, []string{"wb_sheet1.csv", "wb_sheet2.csv"})

	if result.Status != models.StatusSuccess {
		t.Fatalf("Status = %s", result.Status)
	}
	if got := store.Read(agent.Model); got != "ONLY SECTION" {
		t.Errorf("stored model output = %q", got)
	}

	model.mu.Lock()
	defer model.mu.Unlock()
	for _, p := range model.prompts {
		if strings.Contains(p, "CONSOLIDATION TASK") {
			t.Error("single group must not trigger consolidation")
		}
	}
}
