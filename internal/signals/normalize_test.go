package signals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

func testNormalizer() *Normalizer {
	known := map[string]bool{"ASL": true, "AUSD": true}
	return NewNormalizer(func(s string) bool { return known[s] }, "ASL", "AUSD")
}

func TestNormalize_UnknownActionDegradesToHold(t *testing.T) {
	sig := testNormalizer().Normalize(&RawSignal{Action: "YOLO", Token: "ASL", CounterToken: "AUSD"})
	if sig.Action != models.ActionHold {
		t.Fatalf("action = %q, want hold", sig.Action)
	}
}

func TestNormalize_ConfidenceDefaultsAndClamps(t *testing.T) {
	n := testNormalizer()

	if sig := n.Normalize(&RawSignal{Action: "buy"}); sig.Confidence != 50 {
		t.Fatalf("missing confidence = %d, want 50", sig.Confidence)
	}

	over := 140
	if sig := n.Normalize(&RawSignal{Action: "buy", Confidence: &over}); sig.Confidence != 100 {
		t.Fatalf("confidence = %d, want 100", sig.Confidence)
	}

	under := -3
	if sig := n.Normalize(&RawSignal{Action: "buy", Confidence: &under}); sig.Confidence != 0 {
		t.Fatalf("confidence = %d, want 0", sig.Confidence)
	}

	zero := 0
	if sig := n.Normalize(&RawSignal{Action: "buy", Confidence: &zero}); sig.Confidence != 0 {
		t.Fatalf("explicit zero confidence = %d, want 0", sig.Confidence)
	}
}

func TestNormalize_UnknownRiskAndToken(t *testing.T) {
	sig := testNormalizer().Normalize(&RawSignal{
		Action:         "sell",
		Token:          "DOGE",
		CounterToken:   "SHIB",
		RiskAssessment: "extreme",
	})
	if sig.RiskAssessment != models.RiskMedium {
		t.Fatalf("risk = %q, want medium", sig.RiskAssessment)
	}
	if sig.Token != "ASL" || sig.CounterToken != "AUSD" {
		t.Fatalf("tokens = %s/%s, want ASL/AUSD", sig.Token, sig.CounterToken)
	}
}

func TestNormalize_NegativeAmount(t *testing.T) {
	sig := testNormalizer().Normalize(&RawSignal{Action: "buy", Token: "ASL", Amount: -5})
	if sig.Amount != 0 {
		t.Fatalf("amount = %f, want 0", sig.Amount)
	}
}

func TestNormalize_CasingIsCanonicalized(t *testing.T) {
	sig := testNormalizer().Normalize(&RawSignal{Action: " BUY ", Token: "asl", CounterToken: "ausd"})
	if sig.Action != models.ActionBuy {
		t.Fatalf("action = %q, want buy", sig.Action)
	}
	if sig.Token != "ASL" || sig.CounterToken != "AUSD" {
		t.Fatalf("tokens = %s/%s", sig.Token, sig.CounterToken)
	}
}

func TestClient_Latest(t *testing.T) {
	conf := 82
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/signal/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(RawSignal{
			Action:         "buy",
			Token:          "ASL",
			CounterToken:   "AUSD",
			Amount:         2.5,
			Confidence:     &conf,
			RiskAssessment: "low",
			Reasoning:      "momentum breakout",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, testNormalizer())
	sig, err := client.Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sig.Action != models.ActionBuy || sig.Confidence != 82 || sig.Amount != 2.5 {
		t.Fatalf("unexpected signal: %+v", sig)
	}
	t.Logf("Fetched signal: %s %s (confidence %d)", sig.Action, sig.Token, sig.Confidence)
}
