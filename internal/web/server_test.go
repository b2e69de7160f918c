package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devblac/airdrop-radar/internal/catalog"
	"github.com/devblac/airdrop-radar/internal/config"
	"github.com/devblac/airdrop-radar/internal/rpc/solana"
	"github.com/devblac/airdrop-radar/internal/scan"
	"github.com/devblac/airdrop-radar/internal/scoring"
)

const testAddr = "0x1111111111111111111111111111111111111111"

type fakeScanner struct {
	calls   int
	outcome scan.Outcome
}

func (f *fakeScanner) Scan(ctx context.Context, addr, chain string, protocols []catalog.Protocol, windowDays int) scan.Outcome {
	f.calls++
	return f.outcome
}

type memCache struct {
	entries map[string]string
}

func (m *memCache) Get(ctx context.Context, key string, now time.Time) (string, bool, error) {
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key, payload string, expiresAt time.Time) error {
	if m.entries == nil {
		m.entries = map[string]string{}
	}
	m.entries[key] = payload
	return nil
}

type fakeCode struct {
	code string
	err  error
}

func (f *fakeCode) Code(ctx context.Context, address string) (string, error) {
	return f.code, f.err
}

type fakeAccounts struct {
	info *solana.AccountInfo
	err  error
}

func (f *fakeAccounts) GetAccountInfo(ctx context.Context, address string) (*solana.AccountInfo, error) {
	return f.info, f.err
}

func testCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "base"), 0o755); err != nil {
		t.Fatal(err)
	}
	protocol := `{
  "id": "uniswap-v4", "name": "Uniswap v4", "chain": "base", "category": "dex",
  "has_token": false, "protocol_weight": 1.0,
  "contracts": [{"address": "0x2222222222222222222222222222222222222222", "detection_mode": "tx_to_contract"}]
}`
	if err := os.WriteFile(filepath.Join(dir, "base", "01_uniswap.json"), []byte(protocol), 0o644); err != nil {
		t.Fatal(err)
	}
	db := catalog.NewDB(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := db.Load(dir); err != nil {
		t.Fatal(err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SupportedChains: []string{"base", "solana"},
		Scan: config.ScanConfig{
			MaxRPCCalls:       150,
			MaxSeconds:        15,
			DefaultWindowDays: 90,
			MinWindowDays:     30,
			MaxWindowDays:     180,
		},
		Cache: config.CacheConfig{TTL: "1h"},
	}
}

func interactedOutcome() scan.Outcome {
	return scan.Outcome{
		Completeness: scan.CompletenessFull,
		Tokenless: []scan.TokenlessSignal{{
			ProtocolID: "uniswap-v4", ProtocolName: "Uniswap v4", Category: "dex",
			ProtocolWeight: 1.0, Interacted: true, InteractionCount: 12,
			SignalTypes: []string{"contract_interaction"},
			FirstSeen:   "2026-05-01", LastSeen: "2026-08-20",
		}},
	}
}

func newTestServer(t *testing.T, scanner *fakeScanner, cache ResultCache) *Server {
	t.Helper()
	s := NewServer(testConfig(), testCatalog(t), scanner, scoring.NewEngine(), cache,
		&fakeCode{code: "0x"}, &fakeAccounts{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	return s
}

func doScan(t *testing.T, s *Server, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.Router().ServeHTTP(w, req)
	return w
}

func TestScanUnsupportedChain(t *testing.T) {
	s := newTestServer(t, &fakeScanner{}, nil)
	w := doScan(t, s, "/v1/airdrop-exposure/dogecoin", `{"address":"`+testAddr+`"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestScanMissingAddress(t *testing.T) {
	s := newTestServer(t, &fakeScanner{}, nil)
	w := doScan(t, s, "/v1/airdrop-exposure/base", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
		t.Fatalf("error envelope missing: %s", w.Body.String())
	}
}

func TestScanInvalidAddress(t *testing.T) {
	s := newTestServer(t, &fakeScanner{}, nil)
	w := doScan(t, s, "/v1/airdrop-exposure/base", `{"address":"not-an-address"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestScanHappyPath(t *testing.T) {
	scanner := &fakeScanner{outcome: interactedOutcome()}
	s := newTestServer(t, scanner, nil)

	w := doScan(t, s, "/v1/airdrop-exposure/base", `{"address":"`+testAddr+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Chain != "base" || resp.Address != testAddr {
		t.Fatalf("identity fields = %q/%q", resp.Chain, resp.Address)
	}
	if resp.WalletType != walletEOA {
		t.Fatalf("wallet_type = %q, want eoa (empty code)", resp.WalletType)
	}
	if resp.WindowDays != 90 {
		t.Fatalf("window_days = %d, want the default 90", resp.WindowDays)
	}
	if resp.Completeness != "full" || resp.Cached {
		t.Fatalf("completeness=%q cached=%v", resp.Completeness, resp.Cached)
	}
	if len(resp.Signals.Tokenless) != 1 || resp.Signals.Tokenless[0].SignalStrength == "none" {
		t.Fatalf("signals not scored: %+v", resp.Signals.Tokenless)
	}
	if resp.Summary.Likelihood == "" || resp.Disclaimer == "" {
		t.Fatal("summary or disclaimer missing")
	}
}

func TestScanAliasAndClampedWindow(t *testing.T) {
	scanner := &fakeScanner{outcome: interactedOutcome()}
	s := newTestServer(t, scanner, nil)

	w := doScan(t, s, "/v1/airdrop-exposure/base?wallet="+testAddr+"&days=99999", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.WindowDays != 180 {
		t.Fatalf("window_days = %d, want clamped to 180", resp.WindowDays)
	}
}

func TestScanCacheRoundTrip(t *testing.T) {
	scanner := &fakeScanner{outcome: interactedOutcome()}
	s := newTestServer(t, scanner, &memCache{})

	first := doScan(t, s, "/v1/airdrop-exposure/base", `{"address":"`+testAddr+`"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	second := doScan(t, s, "/v1/airdrop-exposure/base", `{"address":"`+testAddr+`"}`)
	if second.Code != http.StatusOK {
		t.Fatalf("second status = %d", second.Code)
	}

	if scanner.calls != 1 {
		t.Fatalf("scanner ran %d times, want 1 (second served from cache)", scanner.calls)
	}
	var resp ScanResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Cached {
		t.Fatal("replayed response must be marked cached")
	}
}

func TestScanPartialOutcomeNotesAndSkips(t *testing.T) {
	out := interactedOutcome()
	out.Completeness = scan.CompletenessPartial
	out.SkippedIDs = []string{"aerodrome", "morpho"}
	scanner := &fakeScanner{outcome: out}
	s := newTestServer(t, scanner, nil)

	w := doScan(t, s, "/v1/airdrop-exposure/base", `{"address":"`+testAddr+`"}`)
	var resp ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.SkippedProtocols) != 2 || resp.SkippedProtocols[0].Reason != skipBudgetExhausted {
		t.Fatalf("skipped = %+v", resp.SkippedProtocols)
	}
	if len(resp.Notes) == 0 {
		t.Fatal("partial scans must carry an explanatory note")
	}
}

func TestInfoEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeScanner{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/airdrop-exposure/base", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["protocols"].(float64) != 1 || body["tokenless_protocols"].(float64) != 1 {
		t.Fatalf("catalog counts = %v", body)
	}
}

func TestContractWalletNote(t *testing.T) {
	scanner := &fakeScanner{outcome: interactedOutcome()}
	s := NewServer(testConfig(), testCatalog(t), scanner, scoring.NewEngine(), nil,
		&fakeCode{code: "0x6080604052"}, &fakeAccounts{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	w := doScan(t, s, "/v1/airdrop-exposure/base", `{"address":"`+testAddr+`"}`)
	var resp ScanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.WalletType != walletContract {
		t.Fatalf("wallet_type = %q, want contract", resp.WalletType)
	}
	if len(resp.Notes) == 0 {
		t.Fatal("contract wallets must carry an advisory note")
	}
}
