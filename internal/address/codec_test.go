package address

import "testing"

func TestValidateEVM(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", true},
		{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", true},
		{"A0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", false},  // no prefix
		{"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB4", false},  // short
		{"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB489", false}, // long
		{"0xZZb86991c6218b36c1d19d4a2e9eb0ce3606eb48", false},  // bad hex
		{"", false},
	}
	for _, tt := range tests {
		if got := Validate(tt.addr, "base"); got != tt.want {
			t.Errorf("Validate(%q, base) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestValidateSolana(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4", true},
		{"So11111111111111111111111111111111111111112", true},
		{"short", false},
		{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", false}, // '0' not in base58
		{"OOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOOO", false},        // 'O' not in base58
		{"", false},
	}
	for _, tt := range tests {
		if got := Validate(tt.addr, "solana"); got != tt.want {
			t.Errorf("Validate(%q, solana) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestValidateUnknownChain(t *testing.T) {
	tests := []struct {
		addr  string
		chain string
	}{
		{"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4", ""},
		{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "bitcoin"},
		{"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "ethereum"},
		{"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4", "sol"},
	}
	for _, tt := range tests {
		if Validate(tt.addr, tt.chain) {
			t.Errorf("Validate(%q, %q) = true, want false for unknown chain", tt.addr, tt.chain)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("0xA0B86991C6218b36c1d19D4a2e9Eb0cE3606eB48", "base"); got != "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48" {
		t.Fatalf("evm normalize, got %q", got)
	}
	sol := "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	if got := Normalize(sol, "solana"); got != sol {
		t.Fatalf("solana addresses are case-sensitive, got %q", got)
	}
}

func TestPadTopic(t *testing.T) {
	got := PadTopic("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	want := "0x000000000000000000000000a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
	if got != want {
		t.Fatalf("PadTopic = %q, want %q", got, want)
	}
	if len(got) != 66 {
		t.Fatalf("topic length = %d, want 66", len(got))
	}

	// Works without the 0x prefix too.
	if got := PadTopic("a0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"); got != want {
		t.Fatalf("unprefixed PadTopic = %q", got)
	}
}
