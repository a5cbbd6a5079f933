// Command llm-stub is a minimal OpenAI-compatible chat completion server
// that returns a canned case-study record. It exists so the full pipeline
// can run offline in integration tests and local smoke runs:
//
//	llm-stub &
//	caselens -llm.base http://localhost:8081/v1 -llm.key test
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	record := map[string]string{
		"id":               "",
		"title":            "AcmeCorp invoice processing automation",
		"category":         "finance",
		"sub_domain":       "invoice processing",
		"objective_kpi":    "estimated: reduce manual entry time",
		"trigger_type":     "Webhook/Cron",
		"input_source":     "email attachments",
		"output_target":    "accounting system",
		"key_nodes":        "parse, validate, post",
		"external_tools":   "n8n, QuickBooks",
		"workflow_summary": "Invoices arriving by email are parsed and posted to the ledger automatically.",
		"difficulty":       "3",
		"scale":            "estimated: 500 invoices/month",
		"roi":              "60% time reduction",
		"risks":            "estimated: OCR errors on scanned documents",
		"region_language":  "English/Global",
		"source_url":       "",
		"info_type":        "secondary",
		"published_date":   "2024-05-01",
		"dedup_key":        "",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		content, err := json.Marshal(record)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-stub",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": string(content),
				},
				"finish_reason": "stop",
			}},
		})
	})

	log.Printf("llm-stub listening on %s (model %s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
