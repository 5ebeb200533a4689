package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/veracitylab/veracity/pkg/veracity"
	"github.com/veracitylab/veracity/pkg/veracity/model"
	"github.com/veracitylab/veracity/pkg/veracity/store"
	"github.com/veracitylab/veracity/pkg/veracity/store/memstore"
)

func newTestMux(t *testing.T) (*http.ServeMux, *memstore.Store) {
	t.Helper()

	bundle := &model.Bundle{
		Name:         "veracity-news",
		Version:      "2024.1",
		Vocabulary:   []string{"report", "fake", "breaking"},
		IDF:          []float64{1.0, 2.0, 1.5},
		Coefficients: []float64{0.5, -1.2, 0.3},
		Intercept:    0.1,
	}
	st := memstore.New()
	detector, err := veracity.New(veracity.Options{Bundle: bundle, Store: st})
	if err != nil {
		t.Fatalf("New detector: %v", err)
	}
	return newMux(detector, st), st
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s returned invalid JSON: %v", method, path, err)
		}
	}
	return rec, decoded
}

func TestServerClassifyFlow(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/classify",
		strings.NewReader(`{"source":"example.com","text":"Breaking: this report is fake fake fake."}`))
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("classify status = %d, body %s", rec.Code, rec.Body.String())
	}

	var verdict store.Verdict
	if err := json.Unmarshal(rec.Body.Bytes(), &verdict); err != nil {
		t.Fatalf("decode verdict: %v", err)
	}
	if verdict.Label != 0 {
		t.Errorf("label = %d, want 0", verdict.Label)
	}
	if verdict.TokenCount != 5 {
		t.Errorf("token_count = %d, want 5", verdict.TokenCount)
	}
	if verdict.ID == "" {
		t.Fatal("verdict has no id")
	}

	// The verdict must now be retrievable by id.
	rec2, _ := doJSON(t, mux, http.MethodGet, "/api/verdicts/"+verdict.ID, "")
	if rec2.Code != http.StatusOK {
		t.Fatalf("get verdict status = %d", rec2.Code)
	}

	// And show up in the listing and the stats.
	rec3, list := doJSON(t, mux, http.MethodGet, "/api/verdicts?source=example.com", "")
	if rec3.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec3.Code)
	}
	if count, _ := list["count"].(float64); count != 1 {
		t.Errorf("list count = %v, want 1", list["count"])
	}

	rec4, stats := doJSON(t, mux, http.MethodGet, "/api/stats", "")
	if rec4.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec4.Code)
	}
	if total, _ := stats["total"].(float64); total != 1 {
		t.Errorf("stats total = %v, want 1", stats["total"])
	}
}

func TestServerClassifyHTML(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, verdict := doJSON(t, mux, http.MethodPost, "/api/classify",
		`{"html":"<html><head><title>Shock</title></head><body><p>fake fake news</p></body></html>"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("classify html status = %d", rec.Code)
	}
	if verdict["title"] != "Shock" {
		t.Errorf("title = %v, want Shock", verdict["title"])
	}
}

func TestServerClassifyRejects(t *testing.T) {
	mux, _ := newTestMux(t)

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed json", http.MethodPost, "{not json", http.StatusBadRequest},
		{"no text or html", http.MethodPost, `{"source":"x"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec, _ := doJSON(t, mux, tt.method, "/api/classify", tt.body)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestServerClassifyBodyTooLarge(t *testing.T) {
	mux, _ := newTestMux(t)

	huge := `{"text":"` + strings.Repeat("a", maxBodyBytes+100) + `"}`
	rec, _ := doJSON(t, mux, http.MethodPost, "/api/classify", huge)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized body status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestServerVerdictNotFound(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, _ := doJSON(t, mux, http.MethodGet, "/api/verdicts/01HV0DOESNOTEXIST00000000", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing verdict status = %d, want 404", rec.Code)
	}
}

func TestServerVerdictsLimitValidation(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, _ := doJSON(t, mux, http.MethodGet, "/api/verdicts?limit=nope", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestServerEmptyListIsNotNull(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/verdicts", nil)
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"verdicts":[]`) {
		t.Errorf("empty listing should encode as [], got %s", rec.Body.String())
	}
}

func TestServerModel(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, body := doJSON(t, mux, http.MethodGet, "/api/model", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("model status = %d", rec.Code)
	}
	if body["name"] != "veracity-news" {
		t.Errorf("model name = %v", body["name"])
	}
	if features, _ := body["features"].(float64); features != 3 {
		t.Errorf("model features = %v, want 3", body["features"])
	}
}

func TestServerHealthz(t *testing.T) {
	mux, _ := newTestMux(t)

	rec, body := doJSON(t, mux, http.MethodGet, "/api/healthz", "")
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", rec.Code, body)
	}
}
