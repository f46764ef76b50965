package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// echoOllama replies with the classified line echoed into reasoning, so tests
// can match outputs back to inputs. Delay staggers completion order.
func echoOllama(t *testing.T, delayFor func(line string) time.Duration) (*httptest.Server, *[]string, *int64, *int64) {
	t.Helper()
	var mu sync.Mutex
	var prompts []string
	var inFlight, maxInFlight int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			json.NewEncoder(w).Encode(map[string]any{
				"models": []map[string]string{{"name": "llama3.1"}},
			})
		case "/api/generate":
			cur := atomic.AddInt64(&inFlight, 1)
			for {
				prev := atomic.LoadInt64(&maxInFlight)
				if cur <= prev || atomic.CompareAndSwapInt64(&maxInFlight, prev, cur) {
					break
				}
			}
			body, _ := io.ReadAll(r.Body)
			var req ollamaGenerateRequest
			json.Unmarshal(body, &req)
			line := classifiedLine(req.Prompt)

			mu.Lock()
			prompts = append(prompts, req.Prompt)
			mu.Unlock()

			if delayFor != nil {
				time.Sleep(delayFor(line))
			}
			atomic.AddInt64(&inFlight, -1)
			reply := fmt.Sprintf(`{"isFireProtection": true, "confidence": 0.5, "reasoning": %q}`, line)
			json.NewEncoder(w).Encode(map[string]string{"response": reply})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &prompts, &inFlight, &maxInFlight
}

func classifiedLine(prompt string) string {
	const marker = "Classify this schedule line:\n"
	idx := strings.LastIndex(prompt, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(prompt[idx+len(marker):])
}

func batchActivities(n int) []Activity {
	out := make([]Activity, n)
	for i := range out {
		out[i] = Activity{RawText: fmt.Sprintf("Sprinkler task %02d", i), Phase: PhaseOverhead}
	}
	return out
}

func TestClassifyBatchPreservesOrder(t *testing.T) {
	// Later items finish first; output order must still match input order.
	srv, _, _, _ := echoOllama(t, func(line string) time.Duration {
		if strings.HasSuffix(line, "00") || strings.HasSuffix(line, "01") {
			return 30 * time.Millisecond
		}
		return 0
	})
	svc := testService(srv.URL)
	svc.cfg.LLMConcurrency = 4

	activities := batchActivities(8)
	results := svc.ClassifyBatch(context.Background(), activities, "commercial")
	if len(results) != len(activities) {
		t.Fatalf("got %d results for %d activities", len(results), len(activities))
	}
	for i, r := range results {
		if r.Reasoning != activities[i].RawText {
			t.Fatalf("result %d is %q, want %q", i, r.Reasoning, activities[i].RawText)
		}
	}
}

func TestClassifyBatchBoundsConcurrency(t *testing.T) {
	srv, _, _, maxInFlight := echoOllama(t, func(string) time.Duration {
		return 20 * time.Millisecond
	})
	svc := testService(srv.URL)
	svc.cfg.LLMConcurrency = 3

	svc.ClassifyBatch(context.Background(), batchActivities(9), "commercial")
	if got := atomic.LoadInt64(maxInFlight); got > 3 {
		t.Fatalf("observed %d concurrent calls, limit is 3", got)
	}
}

// Neighbor context comes from the original list, including across window
// boundaries: with a window of 2, activity 2's context is activities 1 and 3.
func TestClassifyBatchNeighborContextCrossesWindows(t *testing.T) {
	srv, prompts, _, _ := echoOllama(t, nil)
	svc := testService(srv.URL)
	svc.cfg.LLMConcurrency = 2

	activities := batchActivities(4)
	svc.ClassifyBatch(context.Background(), activities, "commercial")

	var boundaryPrompt string
	for _, p := range *prompts {
		if classifiedLine(p) == activities[2].RawText {
			boundaryPrompt = p
			break
		}
	}
	if boundaryPrompt == "" {
		t.Fatal("no prompt recorded for the boundary activity")
	}
	for _, neighbor := range []string{activities[1].RawText, activities[3].RawText} {
		if !strings.Contains(boundaryPrompt, neighbor) {
			t.Fatalf("boundary prompt missing neighbor %q:\n%s", neighbor, boundaryPrompt)
		}
	}
}

func TestEnhanceActivitiesMergesPositionally(t *testing.T) {
	srv, _, _, _ := echoOllama(t, nil)
	svc := testService(srv.URL)

	activities := batchActivities(5)
	summary := svc.EnhanceActivities(context.Background(), activities, "commercial")
	if summary.Total != 5 || summary.FireProtectionCount != 5 {
		t.Fatalf("unexpected summary counts: %+v", summary)
	}
	for i, a := range summary.Activities {
		if a.LLM == nil {
			t.Fatalf("activity %d missing overlay", i)
		}
		if a.LLM.Reasoning != activities[i].RawText {
			t.Fatalf("overlay %d is %q, want %q", i, a.LLM.Reasoning, activities[i].RawText)
		}
		if a.RawText != activities[i].RawText || a.Phase != PhaseOverhead {
			t.Fatalf("enhancement must not change base fields: %+v", a)
		}
	}
	// The input slice itself stays untouched.
	for i, a := range activities {
		if a.LLM != nil {
			t.Fatalf("input activity %d was mutated", i)
		}
	}
}

func TestEnhanceActivitiesSkipsBatchWhenUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/generate" {
			t.Error("classification endpoint must not be called when the health probe fails")
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	svc := testService(srv.URL)

	summary := svc.EnhanceActivities(context.Background(), batchActivities(3), "commercial")
	if summary.Total != 3 || summary.FireProtectionCount != 3 {
		t.Fatalf("unexpected heuristic-only summary: %+v", summary)
	}
	for i, a := range summary.Activities {
		if a.LLM != nil {
			t.Fatalf("activity %d should have no overlay in heuristic-only mode", i)
		}
	}
}
