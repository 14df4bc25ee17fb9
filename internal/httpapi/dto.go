package httpapi

import "github.com/caseflow/caseflow/internal/model"

// ExecuteOrDebuggingRequest backs POST /step/execute_or_debugging
//: case_id alone runs the case's saved step tree and
// saves a SYNC_EXEC report; case_id plus steps instead runs the given
// steps and saves a DEBUG_EXEC report.
type ExecuteOrDebuggingRequest struct {
	CaseID           int64              `json:"case_id" validate:"required"`
	EnvName          string             `json:"env_name,omitempty"`
	InitialVariables model.VariableList `json:"initial_variables,omitempty"`
	Steps            []*model.Step      `json:"steps,omitempty"`
}

// BatchExecuteRequest backs POST /step/batch_execute.
type BatchExecuteRequest struct {
	CaseIDs          []int64            `json:"case_ids" validate:"required,min=1"`
	EnvName          string             `json:"env_name,omitempty"`
	InitialVariables model.VariableList `json:"initial_variables,omitempty"`
}

// HTTPDebuggingRequest backs POST /step/http_debugging: a single HTTP
// step run with no case, no report, no persistence.
type HTTPDebuggingRequest struct {
	Step             *model.Step        `json:"step" validate:"required"`
	EnvName          string             `json:"env_name,omitempty"`
	ProjectID        int64              `json:"project_id,omitempty"`
	InitialVariables model.VariableList `json:"initial_variables,omitempty"`
}

// PythonCodeDebuggingRequest backs POST /step/python_code_debugging: a
// single PYTHON (script) step run with no case, no report.
type PythonCodeDebuggingRequest struct {
	Code             string             `json:"code" validate:"required"`
	DefinedVariables model.VariableList `json:"defined_variables,omitempty"`
	InitialVariables model.VariableList `json:"initial_variables,omitempty"`
}

// errorResponse is the uniform JSON body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
