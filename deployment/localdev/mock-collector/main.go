package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"
)

// Minimal stand-in for an external metrics collector. Serves in-range
// readings and degrades every tenth request so the engine has something to
// remediate during local development.

var requests atomic.Int64

type sampleResponse struct {
	Timestamp string             `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/metrics/latest", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		n := requests.Add(1)
		if n%10 == 0 {
			writeJSON(w, degradedSample())
			return
		}
		writeJSON(w, healthySample())
	})

	addr := ":8081"
	log.Printf("mock collector listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("mock collector: %v", err)
	}
}

func healthySample() sampleResponse {
	between := func(lo, hi float64) float64 { return lo + rand.Float64()*(hi-lo) }
	return sampleResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metrics: map[string]float64{
			"cpu":                between(40, 70),
			"memory":             between(50, 75),
			"latency":            between(150, 400),
			"error_rate":         between(0, 3),
			"throughput":         between(80, 150),
			"disk_io":            between(20, 60),
			"network_throughput": between(100, 300),
		},
	}
}

func degradedSample() sampleResponse {
	return sampleResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metrics: map[string]float64{
			"cpu":                95,
			"memory":             90,
			"latency":            1500,
			"error_rate":         10,
			"throughput":         20,
			"disk_io":            88,
			"network_throughput": 40,
		},
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}
