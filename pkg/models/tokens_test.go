package models

import "testing"

func TestTokenTracker_EmptySummary(t *testing.T) {
	tracker := NewTokenTracker()

	s := tracker.Summary()
	if s.TotalInputTokens != 0 {
		t.Errorf("TotalInputTokens = %d, want 0", s.TotalInputTokens)
	}
	if s.TotalOutputTokens != 0 {
		t.Errorf("TotalOutputTokens = %d, want 0", s.TotalOutputTokens)
	}
	if s.TotalEstimatedTokens != 0 {
		t.Errorf("TotalEstimatedTokens = %d, want 0", s.TotalEstimatedTokens)
	}
	if s.TotalCostEstimate != 0 {
		t.Errorf("TotalCostEstimate = %f, want 0", s.TotalCostEstimate)
	}
	if s.AgentCount != 0 {
		t.Errorf("AgentCount = %d, want 0", s.AgentCount)
	}
	if len(s.Accounts) != 0 {
		t.Errorf("Accounts has %d entries, want 0", len(s.Accounts))
	}
}

func TestTokenTracker_Totals(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.RecordEstimate("drool", 100, 50, 0.001)
	tracker.RecordEstimate("model", 200, 100, 0.002)

	s := tracker.Summary()
	if s.TotalInputTokens != 300 {
		t.Errorf("TotalInputTokens = %d, want 300", s.TotalInputTokens)
	}
	if s.TotalOutputTokens != 150 {
		t.Errorf("TotalOutputTokens = %d, want 150", s.TotalOutputTokens)
	}
	if s.TotalEstimatedTokens != 450 {
		t.Errorf("TotalEstimatedTokens = %d, want 450", s.TotalEstimatedTokens)
	}
	if s.AgentCount != 2 {
		t.Errorf("AgentCount = %d, want 2", s.AgentCount)
	}
}

func TestTokenTracker_DistinctAgentCount(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.RecordEstimate("drool", 10, 5, 0)
	tracker.RecordEstimate("drool", 20, 10, 0)
	tracker.RecordEstimate("model", 30, 15, 0)

	s := tracker.Summary()
	if s.AgentCount != 2 {
		t.Errorf("AgentCount = %d, want 2 (drool recorded twice)", s.AgentCount)
	}
	if len(s.Accounts) != 3 {
		t.Errorf("Accounts has %d entries, want 3", len(s.Accounts))
	}
}

func TestTokenTracker_NegativeCoercedToZero(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.RecordEstimate("drool", -100, -50, -1.5)

	s := tracker.Summary()
	if s.TotalInputTokens != 0 || s.TotalOutputTokens != 0 || s.TotalEstimatedTokens != 0 {
		t.Errorf("negative counts not coerced: %+v", s)
	}
	if s.TotalCostEstimate != 0 {
		t.Errorf("negative cost not coerced: %f", s.TotalCostEstimate)
	}
}

func TestTokenTracker_ConcurrentAppend(t *testing.T) {
	tracker := NewTokenTracker()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				tracker.RecordEstimate("agent", 1, 1, 0)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	s := tracker.Summary()
	if s.TotalInputTokens != 800 {
		t.Errorf("TotalInputTokens = %d, want 800", s.TotalInputTokens)
	}
}
