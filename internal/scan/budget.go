package scan

import "time"

// tokenedCallCap is the fixed per-protocol RPC cap for protocols that already
// have a token: they are scanned for display only, so they never compete with
// tokenless protocols for budget.
const tokenedCallCap = 3

// Budget tracks the two independent, monotonically decreasing limits shared
// by every protocol and detector within one scan: wall-clock seconds and RPC
// call count. It is created per scan and never reset mid-scan. maxCalls of
// zero disables the call cap (the Solana path has no per-call budget).
type Budget struct {
	start    time.Time
	maxTime  time.Duration
	maxCalls int
	used     int
	now      func() time.Time
}

// NewBudget starts the clock on a fresh budget.
func NewBudget(maxSeconds, maxCalls int, now func() time.Time) *Budget {
	if now == nil {
		now = time.Now
	}
	return &Budget{
		start:    now(),
		maxTime:  time.Duration(maxSeconds) * time.Second,
		maxCalls: maxCalls,
		now:      now,
	}
}

// TimeExceeded reports whether the wall-clock budget is spent.
func (b *Budget) TimeExceeded() bool {
	return b.now().Sub(b.start) >= b.maxTime
}

// CallsExhausted reports whether the RPC call budget is spent.
func (b *Budget) CallsExhausted() bool {
	return b.maxCalls > 0 && b.used >= b.maxCalls
}

// Remaining returns the RPC calls left.
func (b *Budget) Remaining() int {
	if b.maxCalls == 0 {
		return 0
	}
	if b.used >= b.maxCalls {
		return 0
	}
	return b.maxCalls - b.used
}

// Charge records n spent RPC calls.
func (b *Budget) Charge(n int) {
	if n > 0 {
		b.used += n
	}
}

// Used returns the total RPC calls charged so far.
func (b *Budget) Used() int {
	return b.used
}

// Elapsed returns time spent since the budget started.
func (b *Budget) Elapsed() time.Duration {
	return b.now().Sub(b.start)
}

// protocolBudget is the per-protocol allocation: tokened protocols get a
// small fixed cap, tokenless protocols get everything that remains.
func protocolBudget(b *Budget, hasToken bool) int {
	remaining := b.Remaining()
	if hasToken && remaining > tokenedCallCap {
		return tokenedCallCap
	}
	return remaining
}
