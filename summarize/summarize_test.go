package summarize

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/blogivea-go/config"
)

func newRouter(upstreamURL string) http.Handler {
	client := NewClient(&config.SummarizeConfig{URL: upstreamURL, APIToken: "hf-token", Timeout: 5 * time.Second})
	r := chi.NewRouter()
	r.Route("/summarize", NewHandlers(client).RegisterRoutes)
	return r
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSummarize(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer hf-token" {
			t.Errorf("authorization = %q", got)
		}
		var in inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Inputs != "long text" {
			t.Errorf("inputs = %q, err %v", in.Inputs, err)
		}
		w.Write([]byte(`[{"summary_text":"short"}]`))
	}))
	defer upstream.Close()

	rec := post(newRouter(upstream.URL), `{"text":"long text"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d %s", rec.Code, rec.Body)
	}
	var resp SummarizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Summary != "short" {
		t.Fatalf("body %s", rec.Body)
	}
}

func TestSummarizeEmptyResult(t *testing.T) {
	for _, body := range []string{`[]`, `{"estimated_time":20}`, `[{"generated_text":"x"}]`, `null`} {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		rec := post(newRouter(upstream.URL), `{"text":"x"}`)
		upstream.Close()
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"summary":""`) {
			t.Fatalf("upstream %s: status %d %s", body, rec.Code, rec.Body)
		}
	}
}

func TestSummarizeNonJSONBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer upstream.Close()

	rec := post(newRouter(upstream.URL), `{"text":"x"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status %d %s", rec.Code, rec.Body)
	}
}

func TestSummarizeRequiresText(t *testing.T) {
	called := false
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer upstream.Close()

	for _, body := range []string{`{}`, `{"text":""}`, `{"text":"   "}`} {
		rec := post(newRouter(upstream.URL), body)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Text is required") {
			t.Fatalf("%s: %d %s", body, rec.Code, rec.Body)
		}
	}
	if called {
		t.Fatalf("upstream called for empty text")
	}
}

func TestSummarizeProxiesUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`Model is loading`))
	}))
	defer upstream.Close()

	rec := post(newRouter(upstream.URL), `{"text":"x"}`)
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "Model is loading") {
		t.Fatalf("status %d %s", rec.Code, rec.Body)
	}
}

func TestSummarizeUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	rec := post(newRouter(url), `{"text":"x"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status %d %s", rec.Code, rec.Body)
	}
}
