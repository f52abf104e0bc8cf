package llmverify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.URL = server.URL
	return New(cfg, nil)
}

func TestVerify_ConfidentVerdict(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"consistent": true, "confidence": 0.92}`))
	})

	assessment, err := client.Verify(context.Background(), Request{
		DocumentID: "doc-1",
		Excerpt:    "Hello world",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !assessment.Usable || !assessment.Consistent {
		t.Errorf("assessment = %+v, want usable and consistent", assessment)
	}
}

func TestVerify_LowConfidenceIsUnusable(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"consistent": false, "confidence": 0.3, "findings": ["fabricated header"]}`))
	})

	assessment, err := client.Verify(context.Background(), Request{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assessment.Usable {
		t.Error("verdict below the cutoff must be unusable")
	}
	if len(assessment.Findings) != 1 {
		t.Errorf("findings not carried: %+v", assessment)
	}
}

func TestVerify_RetriesThenFails(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.Verify(context.Background(), Request{DocumentID: "doc-1"})
	if err == nil {
		t.Fatal("persistent failure must surface an error")
	}
	if want := DefaultConfig().Retries + 1; calls != want {
		t.Errorf("calls = %d, want %d", calls, want)
	}
}

func TestVerify_RecoversOnRetry(t *testing.T) {
	calls := 0
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "flake", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"consistent": true, "confidence": 0.8}`))
	})

	assessment, err := client.Verify(context.Background(), Request{DocumentID: "doc-1"})
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if !assessment.Usable {
		t.Errorf("assessment = %+v", assessment)
	}
}

func TestCheck_AdaptsVerdict(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"consistent": false, "confidence": 0.9, "findings": ["summary sentence has no source"]}`))
	})

	consistent, usable, findings, err := client.Check(
		context.Background(), "doc-1", "Hello world", []string{"Hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consistent || !usable {
		t.Errorf("verdict = consistent %v usable %v, want inconsistent and usable", consistent, usable)
	}
	if len(findings) != 1 {
		t.Errorf("findings not carried: %v", findings)
	}
}

func TestVerify_NoEndpoint(t *testing.T) {
	client := New(Config{}, nil)
	if _, err := client.Verify(context.Background(), Request{}); err == nil {
		t.Error("missing endpoint must error")
	}
}
