package grouper

import (
	"fmt"
	"testing"
)

func TestGroupFiles_Empty(t *testing.T) {
	if got := GroupFiles(nil, "_sheet", 8); got != nil {
		t.Errorf("GroupFiles(nil) = %v, want nil", got)
	}
	if got := GroupFiles([]string{}, "", 0); got != nil {
		t.Errorf("GroupFiles(empty) = %v, want nil", got)
	}
}

func TestGroupFiles_WorkbookPrefix(t *testing.T) {
	files := []string{
		"workbook_A_sheet1.jsonl",
		"workbook_A_sheet2.jsonl",
		"workbook_B_sheet1.jsonl",
	}

	groups := GroupFiles(files, "_sheet", 0)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0].Files) != 2 || groups[0].Files[0] != "workbook_A_sheet1.jsonl" || groups[0].Files[1] != "workbook_A_sheet2.jsonl" {
		t.Errorf("group A = %v", groups[0].Files)
	}
	if len(groups[1].Files) != 1 || groups[1].Files[0] != "workbook_B_sheet1.jsonl" {
		t.Errorf("group B = %v", groups[1].Files)
	}
}

func TestGroupFiles_EmptyDelimiterSingletons(t *testing.T) {
	files := []string{"a.jsonl", "b.jsonl", "c.jsonl"}

	groups := GroupFiles(files, "", 0)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3 (one per file)", len(groups))
	}
	for _, g := range groups {
		if len(g.Files) != 1 {
			t.Errorf("group %q has %d files, want 1", g.Key, len(g.Files))
		}
	}
}

func TestGroupFiles_NoDelimiterInName(t *testing.T) {
	files := []string{"rules.drl", "workbook_sheet1.jsonl"}

	groups := GroupFiles(files, "_sheet", 0)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
}

func TestGroupFiles_ParentDirSeparates(t *testing.T) {
	files := []string{
		"north/wb_sheet1.jsonl",
		"south/wb_sheet1.jsonl",
	}

	groups := GroupFiles(files, "_sheet", 0)
	if len(groups) != 2 {
		t.Fatalf("same prefix in different dirs must not merge, got %d groups", len(groups))
	}
}

func TestGroupFiles_CapSplitsIntoChunks(t *testing.T) {
	var files []string
	for i := 0; i < 20; i++ {
		files = append(files, fmt.Sprintf("wb_sheet%02d.jsonl", i))
	}

	groups := GroupFiles(files, "_sheet", 8)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	wantSizes := []int{8, 8, 4}
	for i, g := range groups {
		if len(g.Files) != wantSizes[i] {
			t.Errorf("chunk %d has %d files, want %d", i, len(g.Files), wantSizes[i])
		}
		if g.Part != i+1 {
			t.Errorf("chunk %d Part = %d, want %d", i, g.Part, i+1)
		}
	}

	// Chunks must preserve input order end to end.
	var joined []string
	for _, g := range groups {
		joined = append(joined, g.Files...)
	}
	for i, f := range joined {
		if f != files[i] {
			t.Fatalf("order broken at %d: got %s, want %s", i, f, files[i])
		}
	}
}

func TestGroupFiles_PartitionProperty(t *testing.T) {
	files := []string{
		"b_sheet2.jsonl",
		"a_sheet1.jsonl",
		"b_sheet1.jsonl",
		"standalone.md",
		"a_sheet2.jsonl",
	}

	groups := GroupFiles(files, "_sheet", 2)

	seen := make(map[string]int)
	for _, g := range groups {
		if len(g.Files) == 0 {
			t.Fatal("empty group emitted")
		}
		for _, f := range g.Files {
			seen[f]++
		}
	}
	for _, f := range files {
		if seen[f] != 1 {
			t.Errorf("file %s appears %d times across groups, want exactly 1", f, seen[f])
		}
	}
}

func TestGroupFiles_DeterministicOrder(t *testing.T) {
	files := []string{
		"z_sheet1.jsonl",
		"a_sheet1.jsonl",
		"m_sheet1.jsonl",
	}

	first := GroupFiles(files, "_sheet", 0)
	for i := 0; i < 10; i++ {
		again := GroupFiles(files, "_sheet", 0)
		for j := range first {
			if again[j].Key != first[j].Key {
				t.Fatalf("run %d: group order changed (%s vs %s)", i, again[j].Key, first[j].Key)
			}
		}
	}
	if first[0].Key != "a" || first[1].Key != "m" || first[2].Key != "z" {
		t.Errorf("groups not key-sorted: %v", []string{first[0].Key, first[1].Key, first[2].Key})
	}
}
