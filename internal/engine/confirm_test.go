package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

func validRequest(sig *models.TradingSignal) ConfirmRequest {
	return ConfirmRequest{
		Phrase:             ConfirmPhrase(sig),
		RiskAcknowledged:   true,
		AmountAcknowledged: true,
	}
}

func TestGate_PhraseIsCaseSensitive(t *testing.T) {
	chain := &mockChain{signer: true, reserves: healthyReserves(), receipt: &models.TxReceipt{Status: 1}}
	coord, _, _, _ := newTestCoordinator(t, chain, testConfig())
	gate := NewGate(coord)

	sig := buySignal()
	req := validRequest(sig)
	req.Phrase = "execute buy"
	if _, err := gate.Submit(context.Background(), testUser, sig, req); err == nil {
		t.Fatal("lowercase phrase must be rejected")
	}

	req.Phrase = "EXECUTE BUY"
	if _, err := gate.Submit(context.Background(), testUser, sig, req); err != nil {
		t.Fatalf("exact phrase rejected: %v", err)
	}
	if chain.swapCalls != 1 {
		t.Fatalf("swapCalls = %d, want 1", chain.swapCalls)
	}
}

func TestGate_RequiresBothAcknowledgments(t *testing.T) {
	chain := &mockChain{signer: true, reserves: healthyReserves(), receipt: &models.TxReceipt{Status: 1}}
	coord, _, _, _ := newTestCoordinator(t, chain, testConfig())
	gate := NewGate(coord)

	sig := buySignal()

	req := validRequest(sig)
	req.RiskAcknowledged = false
	if _, err := gate.Submit(context.Background(), testUser, sig, req); err == nil {
		t.Fatal("missing risk acknowledgment must be rejected")
	}

	req = validRequest(sig)
	req.AmountAcknowledged = false
	if _, err := gate.Submit(context.Background(), testUser, sig, req); err == nil {
		t.Fatal("missing amount acknowledgment must be rejected")
	}

	if chain.swapCalls != 0 {
		t.Fatal("rejected confirmations must never reach the coordinator")
	}
}

func TestGate_RefusesDoubleSubmission(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	chain := &mockChain{
		signer:   true,
		reserves: healthyReserves(),
		receipt:  &models.TxReceipt{Status: 1},
	}
	chain.onReserves = func() {
		close(started)
		<-release
	}
	coord, _, _, _ := newTestCoordinator(t, chain, testConfig())
	gate := NewGate(coord)

	sig := buySignal()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := gate.Submit(context.Background(), testUser, sig, validRequest(sig)); err != nil {
			t.Errorf("first submission failed: %v", err)
		}
	}()

	<-started
	if _, err := gate.Submit(context.Background(), testUser, sig, validRequest(sig)); err == nil {
		t.Error("second submission while in flight must be refused")
	}
	close(release)
	wg.Wait()

	if chain.swapCalls != 1 {
		t.Fatalf("swapCalls = %d, want 1", chain.swapCalls)
	}
}
