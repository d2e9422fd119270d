package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/branchbound/pkg/cache"
	"github.com/matzehuels/branchbound/pkg/pipeline"
)

const textbookTOML = `
variables = ["x", "y", "z"]

[[constraints]]
terms = { z = 1.0, x = -1.0, y = -1.0 }
relation = "=="
rhs = 0.0

[[constraints]]
terms = { x = -5.0, y = 4.0 }
relation = "<="
rhs = 0.0

[[constraints]]
terms = { x = 6.0, y = 2.0 }
relation = "<="
rhs = 17.0

[[constraints]]
terms = { x = 1.0 }
relation = ">="
rhs = 0.0

[[constraints]]
terms = { y = 1.0 }
relation = ">="
rhs = 0.0
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
	t.Cleanup(func() { _ = runner.Close() })

	srv := httptest.NewServer(NewServer(runner, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postSolve(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/solve", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if body["version"] == "" {
		t.Error("missing version field")
	}
}

func TestSolve(t *testing.T) {
	srv := newTestServer(t)

	req, _ := json.Marshal(map[string]any{"model_toml": textbookTOML})
	resp := postSolve(t, srv, string(req))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		RunID     string             `json:"run_id"`
		Objective float64            `json:"objective"`
		Values    map[string]float64 `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if math.Abs(body.Objective-4) > 1e-6 {
		t.Errorf("objective = %g, want 4", body.Objective)
	}
	if body.Values["x"] != 2 || body.Values["y"] != 2 {
		t.Errorf("values = %v, want x=2 y=2", body.Values)
	}
	if body.RunID == "" {
		t.Error("missing run_id")
	}
}

func TestSolveWithArtifacts(t *testing.T) {
	srv := newTestServer(t)

	req, _ := json.Marshal(map[string]any{
		"model_toml": textbookTOML,
		"formats":    []string{"dot"},
	})
	resp := postSolve(t, srv, string(req))

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Artifacts map[string][]byte `json:"artifacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	dot, ok := body.Artifacts["dot"]
	if !ok || !strings.HasPrefix(string(dot), "digraph search") {
		t.Errorf("dot artifact = %q", dot)
	}
}

func TestSolveErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing model", `{}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"model path rejected", `{"model_path":"x.toml"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{
			"invalid model",
			`{"model_toml":"variables = []"}`,
			http.StatusBadRequest,
			"INVALID_MODEL",
		},
		{
			"no integer solution",
			`{"model_toml":"variables = [\"x\", \"z\"]\n[[constraints]]\nterms = { z = 1.0, x = -1.0 }\nrelation = \"==\"\nrhs = 0.0\n[[constraints]]\nterms = { x = 1.0 }\nrelation = \">=\"\nrhs = 0.5\n[[constraints]]\nterms = { x = 1.0 }\nrelation = \"<=\"\nrhs = 0.6\n"}`,
			http.StatusUnprocessableEntity,
			"NO_INTEGER_SOLUTION",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postSolve(t, srv, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			var body struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Message == "" {
				t.Error("missing error message")
			}
		})
	}
}
