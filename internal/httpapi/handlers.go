package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/caseflow/caseflow/internal/caserun"
	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/resolver"
	"github.com/caseflow/caseflow/internal/store"
)

// Handler holds the dependencies every endpoint needs: the Case Runner
// for persisted runs, the store for ad-hoc lookups the single-step debug
// endpoints need, and a shared validator instance.
type Handler struct {
	runner   *caserun.Runner
	store    store.Store
	catalog  *resolver.Catalog
	logger   *slog.Logger
	validate *validator.Validate
}

// NewHandler builds a Handler. logger may be nil.
func NewHandler(runner *caserun.Runner, st store.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runner:   runner,
		store:    st,
		catalog:  resolver.NewCatalog(),
		logger:   logger,
		validate: validator.New(),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body: " + err.Error()})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	return true
}

// executeOrDebugging implements POST /step/execute_or_debugging:
// case_id alone runs the saved step tree (SYNC_EXEC); case_id plus an
// explicit steps array runs those steps instead and saves a DEBUG_EXEC
// report.
func (h *Handler) executeOrDebugging(w http.ResponseWriter, r *http.Request) {
	var req ExecuteOrDebuggingRequest
	if !h.decode(w, r, &req) {
		return
	}

	opts := caserun.Options{
		EnvName:          req.EnvName,
		InitialVariables: req.InitialVariables,
		Persist:          true,
	}

	var (
		res *caserun.Result
		err error
	)
	if len(req.Steps) == 0 {
		opts.ReportType = model.ReportTypeSync
		res, err = h.runner.Run(r.Context(), req.CaseID, opts)
	} else {
		opts.ReportType = model.ReportTypeDebug
		res, err = h.runner.RunWithSteps(r.Context(), req.CaseID, req.Steps, opts)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// batchExecute implements POST /step/batch_execute.
func (h *Handler) batchExecute(w http.ResponseWriter, r *http.Request) {
	var req BatchExecuteRequest
	if !h.decode(w, r, &req) {
		return
	}

	summary := h.runner.RunBatch(r.Context(), req.CaseIDs, caserun.Options{
		EnvName:          req.EnvName,
		InitialVariables: req.InitialVariables,
		ReportType:       model.ReportTypeSync,
		Persist:          true,
	})
	writeJSON(w, http.StatusOK, summary)
}

// httpDebugging implements POST /step/http_debugging: a single-step
// dry-run, no case, no persistence.
func (h *Handler) httpDebugging(w http.ResponseWriter, r *http.Request) {
	var req HTTPDebuggingRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Step.StepType = model.StepTypeHTTP
	h.debugSingleStep(w, r, req.Step, req.EnvName, req.ProjectID, req.InitialVariables)
}

// pythonCodeDebugging implements POST /step/python_code_debugging: a
// single-step dry-run of a PYTHON (script) step.
func (h *Handler) pythonCodeDebugging(w http.ResponseWriter, r *http.Request) {
	var req PythonCodeDebuggingRequest
	if !h.decode(w, r, &req) {
		return
	}
	step := &model.Step{
		StepCode:         "debug",
		StepType:         model.StepTypePython,
		Code:             req.Code,
		DefinedVariables: req.DefinedVariables,
	}
	h.debugSingleStep(w, r, step, "", 0, req.InitialVariables)
}

func (h *Handler) debugSingleStep(w http.ResponseWriter, r *http.Request, step *model.Step, envName string, projectID int64, initial model.VariableList) {
	if step.StepCode == "" {
		step.StepCode = "debug"
	}
	ec := h.newDebugContext(envName, projectID, initial)
	run := runSingleStep(r.Context(), ec, step)
	if len(run.Roots) == 0 {
		writeError(w, model.NewParameterError("step", "produced no result"))
		return
	}
	writeJSON(w, http.StatusOK, run.Roots[0])
}
