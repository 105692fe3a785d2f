package core

import "time"

// TokenUsage tracks token consumption for a turn or a whole run. Every
// bucket is independently present-or-absent (nil means the provider did not
// report it), and buckets never overlap: adapters subtract rolled-up
// subtotals so that the sum of present buckets matches the reported total.
type TokenUsage struct {
	InputTokens       *int64
	OutputTokens      *int64
	CachedReadTokens  *int64
	CachedWriteTokens *int64
	ReasoningTokens   *int64
	ToolUseTokens     *int64
	// TotalTokens is the provider-reported total, when one exists.
	TotalTokens *int64
}

// Count returns a pointer suitable for TokenUsage bucket literals.
func Count(n int64) *int64 { return &n }

func addBucket(a, b *int64) *int64 {
	if a == nil && b == nil {
		return nil
	}
	var sum int64
	if a != nil {
		sum += *a
	}
	if b != nil {
		sum += *b
	}
	return &sum
}

// ResolvedTotal returns the provider-reported total when present, otherwise
// the sum of present buckets.
func (u TokenUsage) ResolvedTotal() int64 {
	if u.TotalTokens != nil {
		return *u.TotalTokens
	}
	var sum int64
	for _, b := range []*int64{
		u.InputTokens,
		u.OutputTokens,
		u.CachedReadTokens,
		u.CachedWriteTokens,
		u.ReasoningTokens,
		u.ToolUseTokens,
	} {
		if b != nil {
			sum += *b
		}
	}
	return sum
}

// Add merges two usages. A bucket is present in the result iff present on at
// least one operand; the result's total is the sum of both resolved totals,
// so accumulation never double counts a provider-reported rollup.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	total := u.ResolvedTotal() + other.ResolvedTotal()
	return TokenUsage{
		InputTokens:       addBucket(u.InputTokens, other.InputTokens),
		OutputTokens:      addBucket(u.OutputTokens, other.OutputTokens),
		CachedReadTokens:  addBucket(u.CachedReadTokens, other.CachedReadTokens),
		CachedWriteTokens: addBucket(u.CachedWriteTokens, other.CachedWriteTokens),
		ReasoningTokens:   addBucket(u.ReasoningTokens, other.ReasoningTokens),
		ToolUseTokens:     addBucket(u.ToolUseTokens, other.ToolUseTokens),
		TotalTokens:       &total,
	}
}

// Clone returns a value snapshot with private pointer storage.
func (u TokenUsage) Clone() TokenUsage {
	clone := func(p *int64) *int64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	return TokenUsage{
		InputTokens:       clone(u.InputTokens),
		OutputTokens:      clone(u.OutputTokens),
		CachedReadTokens:  clone(u.CachedReadTokens),
		CachedWriteTokens: clone(u.CachedWriteTokens),
		ReasoningTokens:   clone(u.ReasoningTokens),
		ToolUseTokens:     clone(u.ToolUseTokens),
		TotalTokens:       clone(u.TotalTokens),
	}
}

// IsZero reports whether nothing has been recorded.
func (u TokenUsage) IsZero() bool {
	return u.InputTokens == nil && u.OutputTokens == nil &&
		u.CachedReadTokens == nil && u.CachedWriteTokens == nil &&
		u.ReasoningTokens == nil && u.ToolUseTokens == nil &&
		u.TotalTokens == nil
}

// Timing records wall-clock bounds for a run or a snapshot inside one.
type Timing struct {
	Start time.Time
	End   time.Time
}

// Ended reports whether the end bound has been set.
func (t Timing) Ended() bool { return !t.End.IsZero() }

// Duration returns the elapsed time, or zero while the end is unset.
func (t Timing) Duration() time.Duration {
	if !t.Ended() {
		return 0
	}
	return t.End.Sub(t.Start)
}
