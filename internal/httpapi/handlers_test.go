package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caseflow/caseflow/internal/caserun"
	"github.com/caseflow/caseflow/internal/model"
)

func seedCase(s *fakeStore, caseID int64, roots []*model.Step) {
	s.cases[caseID] = &model.Case{
		ID:          caseID,
		Code:        "case-001",
		CaseName:    "checkout smoke",
		CaseProject: 1,
		CaseType:    model.CaseTypePrivateScript,
	}
	s.trees[caseID] = roots
}

func newTestHandler(s *fakeStore) *Handler {
	return NewHandler(caserun.New(s, nil), s, nil)
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestExecuteOrDebuggingSavedTree(t *testing.T) {
	s := newFakeStore()
	seedCase(s, 1, []*model.Step{
		{ID: 10, CaseID: 1, StepNo: 1, StepCode: "s1", StepType: model.StepTypeWait},
	})
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/execute_or_debugging", ExecuteOrDebuggingRequest{CaseID: 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res caserun.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.SavedToDatabase || res.ReportCode == "" {
		t.Fatalf("expected a persisted SYNC_EXEC run, got %+v", res)
	}
	if len(s.reports) != 1 || s.reports[0].ReportType != model.ReportTypeSync {
		t.Fatalf("expected one SYNC_EXEC report, got %+v", s.reports)
	}
}

func TestExecuteOrDebuggingExplicitSteps(t *testing.T) {
	s := newFakeStore()
	seedCase(s, 1, nil)
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/execute_or_debugging", ExecuteOrDebuggingRequest{
		CaseID: 1,
		Steps: []*model.Step{
			{StepCode: "debug-1", StepType: model.StepTypeWait},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(s.reports) != 1 || s.reports[0].ReportType != model.ReportTypeDebug {
		t.Fatalf("expected one DEBUG_EXEC report, got %+v", s.reports)
	}
}

func TestExecuteOrDebuggingMissingCaseID(t *testing.T) {
	s := newFakeStore()
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/execute_or_debugging", ExecuteOrDebuggingRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing case_id, got %d", rec.Code)
	}
}

func TestExecuteOrDebuggingUnknownCaseIs404(t *testing.T) {
	s := newFakeStore()
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/execute_or_debugging", ExecuteOrDebuggingRequest{CaseID: 99})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown case, got %d", rec.Code)
	}
}

func TestBatchExecute(t *testing.T) {
	s := newFakeStore()
	seedCase(s, 1, []*model.Step{{ID: 10, CaseID: 1, StepNo: 1, StepCode: "s1", StepType: model.StepTypeWait}})
	seedCase(s, 2, []*model.Step{{ID: 20, CaseID: 2, StepNo: 1, StepCode: "s1", StepType: model.StepTypeWait}})
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/batch_execute", BatchExecuteRequest{CaseIDs: []int64{1, 2}})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary caserun.BatchSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.TotalCases != 2 || !summary.AllSuccess {
		t.Fatalf("expected both cases to succeed, got %+v", summary)
	}
}

func TestBatchExecuteRequiresCaseIDs(t *testing.T) {
	s := newFakeStore()
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/batch_execute", BatchExecuteRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an empty case_ids list, got %d", rec.Code)
	}
}

func TestHTTPDebuggingDoesNotPersist(t *testing.T) {
	s := newFakeStore()
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/http_debugging", HTTPDebuggingRequest{
		Step: &model.Step{StepCode: "debug", StepType: model.StepTypeWait, Wait: 0},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(s.reports) != 0 {
		t.Fatalf("debug endpoint must never persist a report, got %+v", s.reports)
	}
}

func TestPythonCodeDebuggingDoesNotPersist(t *testing.T) {
	s := newFakeStore()
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/python_code_debugging", PythonCodeDebuggingRequest{
		Code: "result = 1 + 1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(s.reports) != 0 {
		t.Fatalf("debug endpoint must never persist a report, got %+v", s.reports)
	}
}

func TestPythonCodeDebuggingRequiresCode(t *testing.T) {
	s := newFakeStore()
	router := NewRouter(newTestHandler(s), nil)

	rec := doRequest(t, router, http.MethodPost, "/step/python_code_debugging", PythonCodeDebuggingRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing code, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newFakeStore()
	router := NewRouter(newTestHandler(s), nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", rec.Code)
	}
}
