package webhook

import "testing"

func TestExtractReferenceFromWellKnownFields(t *testing.T) {
	fields := map[string]string{"order_id": "TPABC123"}
	ref, ok := ExtractReference(fields)
	if !ok || ref != "TPABC123" {
		t.Fatalf("expected TPABC123, got %q ok=%v", ref, ok)
	}
}

func TestExtractReferenceFieldOrder(t *testing.T) {
	fields := map[string]string{
		"reference": "TPFIRST99",
		"order_id":  "TPSECOND9",
	}
	ref, _ := ExtractReference(fields)
	if ref != "TPFIRST99" {
		t.Fatalf("expected the first field in the chain to win, got %q", ref)
	}
}

func TestExtractReferenceFromFreeText(t *testing.T) {
	fields := map[string]string{
		"content": "CK den 970422 thanh toan don hang TPABC123 cam on quy khach",
	}
	ref, ok := ExtractReference(fields)
	if !ok || ref != "TPABC123" {
		t.Fatalf("expected TPABC123 scanned out of content, got %q ok=%v", ref, ok)
	}
}

func TestExtractReferenceMissing(t *testing.T) {
	if _, ok := ExtractReference(map[string]string{"content": "no code here"}); ok {
		t.Fatal("expected no reference")
	}
	if _, ok := ExtractReference(map[string]string{}); ok {
		t.Fatal("expected no reference from empty map")
	}
}

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		want   int64
		ok     bool
	}{
		{"plain", map[string]string{"amount": "50000"}, 50_000, true},
		{"formatted", map[string]string{"transferAmount": "50,000 VND"}, 50_000, true},
		{"decimal rounds", map[string]string{"amount": "50000.4"}, 50_000, true},
		{"first parsable wins", map[string]string{"transferAmount": "n/a", "amount": "7000"}, 7_000, true},
		{"negative rejected", map[string]string{"amount": "-100"}, 0, false},
		{"missing", map[string]string{}, 0, false},
		{"unparsable", map[string]string{"amount": "??"}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractAmount(tc.fields)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("got %d ok=%v, want %d ok=%v", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestExtractProviderTxID(t *testing.T) {
	fields := map[string]string{"id": "999", "transaction_id": "prov-123"}
	if got := ExtractProviderTxID(fields); got != "prov-123" {
		t.Fatalf("expected transaction_id to win over id, got %q", got)
	}
	if got := ExtractProviderTxID(map[string]string{}); got != "" {
		t.Fatalf("expected empty provider tx id, got %q", got)
	}
}
