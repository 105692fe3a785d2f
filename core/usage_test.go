package core

import (
	"testing"
	"time"
)

func TestTokenUsage_AddSumsPresentBuckets(t *testing.T) {
	a := TokenUsage{InputTokens: Count(10), OutputTokens: Count(5)}
	b := TokenUsage{InputTokens: Count(3), OutputTokens: Count(2)}
	sum := a.Add(b)

	if sum.InputTokens == nil || *sum.InputTokens != 13 {
		t.Fatalf("input bucket: %+v", sum.InputTokens)
	}
	if sum.OutputTokens == nil || *sum.OutputTokens != 7 {
		t.Fatalf("output bucket: %+v", sum.OutputTokens)
	}
	if sum.TotalTokens == nil || *sum.TotalTokens != 20 {
		t.Fatalf("expected total 20, got %v", sum.TotalTokens)
	}
}

func TestTokenUsage_AbsentBucketsStayAbsent(t *testing.T) {
	sum := TokenUsage{InputTokens: Count(1), OutputTokens: Count(1)}.
		Add(TokenUsage{InputTokens: Count(2), OutputTokens: Count(2)})
	if sum.CachedReadTokens != nil || sum.CachedWriteTokens != nil ||
		sum.ReasoningTokens != nil || sum.ToolUseTokens != nil {
		t.Fatalf("absent buckets materialized: %+v", sum)
	}
}

func TestTokenUsage_PresentAbsorbsAbsent(t *testing.T) {
	a := TokenUsage{InputTokens: Count(1), OutputTokens: Count(1), ReasoningTokens: Count(7)}
	b := TokenUsage{InputTokens: Count(1), OutputTokens: Count(1)}

	left := a.Add(b)
	if left.ReasoningTokens == nil || *left.ReasoningTokens != 7 {
		t.Fatalf("present+absent: %+v", left.ReasoningTokens)
	}
	right := b.Add(a)
	if right.ReasoningTokens == nil || *right.ReasoningTokens != 7 {
		t.Fatalf("absent+present: %+v", right.ReasoningTokens)
	}
}

func TestTokenUsage_ResolvedTotalPrefersReported(t *testing.T) {
	u := TokenUsage{InputTokens: Count(10), OutputTokens: Count(5), TotalTokens: Count(100)}
	if u.ResolvedTotal() != 100 {
		t.Fatalf("expected reported total, got %d", u.ResolvedTotal())
	}

	derived := TokenUsage{
		InputTokens:      Count(10),
		OutputTokens:     Count(5),
		CachedReadTokens: Count(3),
		ReasoningTokens:  Count(2),
	}
	if derived.ResolvedTotal() != 20 {
		t.Fatalf("expected derived total 20, got %d", derived.ResolvedTotal())
	}
}

func TestTokenUsage_AddTotalIsSumOfResolvedTotals(t *testing.T) {
	// One side reports a total that disagrees with its bucket sum; the
	// reported figure wins.
	a := TokenUsage{InputTokens: Count(10), OutputTokens: Count(5), TotalTokens: Count(18)}
	b := TokenUsage{InputTokens: Count(4), OutputTokens: Count(2)}

	sum := a.Add(b)
	if sum.TotalTokens == nil || *sum.TotalTokens != 24 {
		t.Fatalf("expected 18+6=24, got %v", sum.TotalTokens)
	}
}

func TestTokenUsage_AddDoesNotMutateOperands(t *testing.T) {
	a := TokenUsage{InputTokens: Count(1), OutputTokens: Count(1), CachedReadTokens: Count(5)}
	b := TokenUsage{InputTokens: Count(2), OutputTokens: Count(2), CachedReadTokens: Count(3)}
	_ = a.Add(b)

	if *a.CachedReadTokens != 5 || *b.CachedReadTokens != 3 {
		t.Fatalf("operands mutated: a=%v b=%v", *a.CachedReadTokens, *b.CachedReadTokens)
	}
}

func TestTokenUsage_CloneIsDeep(t *testing.T) {
	u := TokenUsage{InputTokens: Count(1), OutputTokens: Count(2), ReasoningTokens: Count(3)}
	c := u.Clone()
	*c.ReasoningTokens = 99
	if *u.ReasoningTokens != 3 {
		t.Fatal("clone shares pointer buckets")
	}
}

func TestTokenUsage_IsZero(t *testing.T) {
	if !(TokenUsage{}).IsZero() {
		t.Fatal("empty usage should be zero")
	}
	if (TokenUsage{OutputTokens: Count(0)}).IsZero() {
		t.Fatal("a present bucket counts even at zero")
	}
}

func TestTiming(t *testing.T) {
	start := time.Now()
	tm := Timing{Start: start}
	if tm.Ended() {
		t.Fatal("zero end should not count as ended")
	}
	tm.End = start.Add(250 * time.Millisecond)
	if !tm.Ended() || tm.Duration() != 250*time.Millisecond {
		t.Fatalf("unexpected timing: %+v", tm)
	}
}
