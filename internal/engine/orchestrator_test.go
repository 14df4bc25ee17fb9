package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/resolver"
)

func newTestContext(t *testing.T, vars model.VariableList) *Context {
	t.Helper()
	c := New(resolver.New(nil, resolver.NewCatalog(), nil), 1, "CASE1", "test", 1, vars)
	c.Enter()
	t.Cleanup(c.Exit)
	return c
}

func intPtr(i int) *int { return &i }

func TestHTTPStepExtractAndAssert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"A"}`))
	}))
	defer srv.Close()

	ec := newTestContext(t, nil)
	step := &model.Step{
		StepCode:      "s1",
		StepType:      model.StepTypeHTTP,
		RequestURL:    srv.URL + "/users/1",
		RequestMethod: "GET",
		ExtractVariables: []model.ExtractVariable{
			{Name: "uid", Source: "response json", Range: "SOME", Expr: "$.id"},
		},
		AssertValidators: []model.AssertValidator{
			{Name: "ok", Source: "response json", Expr: "$.id", Operation: "等于", ExceptValue: model.Int(1)},
		},
	}
	res, err := runStep(context.Background(), ec, step)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error=%q", res.Error)
	}
	if len(res.ExtractVariables) != 1 || !res.ExtractVariables[0].Success {
		t.Fatalf("extract failed: %+v", res.ExtractVariables)
	}
	f, _ := res.ExtractVariables[0].ExtractValue.AsFloat()
	if f != 1 {
		t.Fatalf("extract_value = %v, want 1", f)
	}
	v, ok := ec.SessionVariables.Get("uid")
	if !ok {
		t.Fatal("expected uid merged into session_variables")
	}
	vf, _ := v.AsFloat()
	if vf != 1 {
		t.Fatalf("session uid = %v, want 1", vf)
	}
}

func TestIfSkipsChildrenOnConditionNotMet(t *testing.T) {
	ec := newTestContext(t, model.VariableList{{Key: "flag", Value: model.Int(0)}})
	step := &model.Step{
		StepCode:   "if1",
		StepType:   model.StepTypeIf,
		Conditions: `{"value":"${flag}","operation":"等于","except_value":1}`,
		Children: []*model.Step{
			{StepCode: "child1", StepType: model.StepTypeWait, Wait: 0},
		},
	}
	res, err := runStep(context.Background(), ec, step)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error=%q", res.Error)
	}
	if res.Message != "condition not met" {
		t.Fatalf("message = %q", res.Message)
	}
	if len(res.Children) != 0 {
		t.Fatalf("expected no children executed, got %d", len(res.Children))
	}
}

func TestLoopCountContinuesOnChildFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	ec := newTestContext(t, nil)
	step := &model.Step{
		StepCode:     "loop1",
		StepType:     model.StepTypeLoop,
		LoopMode:     model.LoopModeCount,
		LoopMaximums: 3,
		LoopOnError:  model.LoopOnErrorContinue,
		Children: []*model.Step{
			{
				StepCode:      "child1",
				StepType:      model.StepTypeHTTP,
				RequestURL:    srv.URL,
				RequestMethod: "GET",
				AssertValidators: []model.AssertValidator{
					{Name: "status", Source: "response json", Expr: "$.nope", Operation: "等于", ExceptValue: model.Int(1)},
				},
			},
		},
	}
	res, err := runStep(context.Background(), ec, step)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success {
		t.Fatal("expected loop step to report failure")
	}
	if len(res.Children) != 3 {
		t.Fatalf("expected 3 child executions, got %d", len(res.Children))
	}
	cycles := map[int]bool{}
	for _, c := range res.Children {
		cycles[c.NumCycles] = true
	}
	for _, want := range []int{1, 2, 3} {
		if !cycles[want] {
			t.Fatalf("expected num_cycles %d among children, got %v", want, cycles)
		}
	}
}

func TestLoopCountSafetyCap(t *testing.T) {
	ec := newTestContext(t, nil)
	step := &model.Step{
		StepCode:     "loop2",
		StepType:     model.StepTypeLoop,
		LoopMode:     model.LoopModeCount,
		LoopMaximums: 1000,
		LoopOnError:  model.LoopOnErrorContinue,
	}
	res, err := runStep(context.Background(), ec, step)
	if err != nil {
		t.Fatal(err)
	}
	if res.Success {
		t.Fatal("expected loop_maximums over cap to fail the step")
	}
}

func TestScriptExecutorMappingResult(t *testing.T) {
	ec := newTestContext(t, nil)
	step := &model.Step{
		StepCode: "script1",
		StepType: model.StepTypePython,
		Code:     `{"token": "abc123", "n": 7}`,
	}
	res, err := runStep(context.Background(), ec, step)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("expected success, got error=%q", res.Error)
	}
	found := map[string]bool{}
	for _, e := range res.ExtractVariables {
		found[e.Name] = true
	}
	if !found["token"] || !found["n"] {
		t.Fatalf("expected token and n extracted, got %+v", res.ExtractVariables)
	}
}

func TestOrchestrateAggregatesStats(t *testing.T) {
	ec := newTestContext(t, nil)
	roots := []*model.Step{
		{StepCode: "a", StepNo: 1, StepType: model.StepTypeWait, Wait: 0},
		{StepCode: "b", StepNo: 2, StepType: model.StepTypeIf,
			Conditions: `{"value":1,"operation":"等于","except_value":2}`,
		},
	}
	run := Orchestrate(context.Background(), ec, roots)
	if run.Aborted {
		t.Fatal("did not expect abort")
	}
	if run.Stats.TotalSteps != 2 || run.Stats.SuccessSteps != 2 {
		t.Fatalf("stats = %+v", run.Stats)
	}
	if run.Stats.PassRatio != 100 {
		t.Fatalf("pass_ratio = %v, want 100", run.Stats.PassRatio)
	}
}

func TestLoopStopAbortsCase(t *testing.T) {
	ec := newTestContext(t, nil)
	roots := []*model.Step{
		{
			StepCode:     "loop_stop",
			StepNo:       1,
			StepType:     model.StepTypeLoop,
			LoopMode:     model.LoopModeCount,
			LoopMaximums: 2,
			LoopOnError:  model.LoopOnErrorStop,
			Children: []*model.Step{
				{StepCode: "fails", StepType: model.StepTypeWait, Wait: -1},
			},
		},
		{StepCode: "never_runs", StepNo: 2, StepType: model.StepTypeWait, Wait: 0},
	}
	run := Orchestrate(context.Background(), ec, roots)
	if !run.Aborted {
		t.Fatal("expected STOP strategy to abort the case")
	}
	if len(run.Roots) != 1 {
		t.Fatalf("expected only the loop root to have run, got %d roots", len(run.Roots))
	}
}
