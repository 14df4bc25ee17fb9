// Package model holds the data shapes shared across the engine, the
// scheduler, and the repository layer: projects, environments, tags,
// cases, steps, reports, details, tasks and execution records, plus the
// tagged Value type and the sentinel error kinds used throughout.
package model

import "time"

// State is the soft-deletion tag shared by every entity: 0 active,
// 1 deleted. Every repository filter excludes state=1.
type State int

const (
	StateActive  State = 0
	StateDeleted State = 1
)

// VariableEntry is the {key,value,desc} triple used for session
// variables, defined variables, and step user-variable bindings.
type VariableEntry struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
	Desc  string `json:"desc,omitempty"`
}

// VariableList is an ordered sequence of VariableEntry with upsert-by-key
// semantics backing the engine's monotonic session_variables pool.
type VariableList []VariableEntry

// Upsert writes key/value, overwriting an existing entry with the same
// key in place, or appending a new one. A later write to the same key
// always supersedes an earlier one.
func (l *VariableList) Upsert(key string, value Value, desc string) {
	for i := range *l {
		if (*l)[i].Key == key {
			(*l)[i].Value = value
			if desc != "" {
				(*l)[i].Desc = desc
			}
			return
		}
	}
	*l = append(*l, VariableEntry{Key: key, Value: value, Desc: desc})
}

// Get looks up a variable by key. The bool result is false on a miss.
func (l VariableList) Get(key string) (Value, bool) {
	for _, e := range l {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Clone returns an independent copy safe to mutate without aliasing the
// receiver's backing array.
func (l VariableList) Clone() VariableList {
	out := make(VariableList, len(l))
	copy(out, l)
	return out
}

// ToMap flattens the list into a name->value map, last write wins. Used
// to seed the one-shot namespace convenience dict the script executor
// exposes.
func (l VariableList) ToMap() map[string]Value {
	out := make(map[string]Value, len(l))
	for _, e := range l {
		out[e.Key] = e.Value
	}
	return out
}

// Project owns environments, cases, tasks and tags.
type Project struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	State       State     `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Environment holds the base host/port HTTP steps resolve relative URLs
// against when a step's request_url does not start with "http".
type Environment struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	ProjectID int64     `json:"project_id"`
	EnvName   string    `json:"env_name"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Desc      string    `json:"env_desc,omitempty"`
	// GlobalHeaders merge into every HTTP step's headers in this
	// environment when the step omits that header name. Supplemented
	// from original_source's autotest_env_crud.py.
	GlobalHeaders VariableList `json:"env_global_headers,omitempty"`
	State         State        `json:"state"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TagType/TagMode classify a Tag's role; both are opaque small-integer
// enums from the caller's perspective, kept as strings here for
// readability without losing the "classification label" semantics.
type Tag struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Project   int64     `json:"tag_project"`
	TagType   string    `json:"tag_type"`
	TagMode   string    `json:"tag_mode"`
	TagName   string    `json:"tag_name"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseType controls whether a case may be the target of a QuoteCase step.
type CaseType string

const (
	CaseTypePrivateScript CaseType = "PRIVATE_SCRIPT"
	CaseTypePublicScript  CaseType = "PUBLIC_SCRIPT"
)

// Case is an ordered tree of steps plus shared initial variables.
type Case struct {
	ID                int64        `json:"id"`
	Code              string       `json:"code"`
	CaseName          string       `json:"case_name"`
	CaseProject       int64        `json:"case_project"`
	CreatedUser       int64        `json:"created_user"`
	CaseType          CaseType     `json:"case_type"`
	CaseTags          []int64      `json:"case_tags,omitempty"`
	CaseVersion       int          `json:"case_version"`
	SessionVariables  VariableList `json:"session_variables,omitempty"`
	CaseDesc          string       `json:"case_desc,omitempty"`
	CasePriority      string       `json:"case_priority,omitempty"`
	LastRunState      string       `json:"last_run_state,omitempty"`
	LastRunAt         *time.Time   `json:"last_run_at,omitempty"`
	State             State        `json:"state"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// StepType enumerates the step kinds the engine knows how to execute.
type StepType string

const (
	StepTypeHTTP         StepType = "HTTP"
	StepTypePython       StepType = "PYTHON"
	StepTypeTCP          StepType = "TCP"
	StepTypeDatabase     StepType = "DATABASE"
	StepTypeLoop         StepType = "LOOP"
	StepTypeIf           StepType = "IF"
	StepTypeWait         StepType = "WAIT"
	StepTypeQuote        StepType = "QUOTE"
	StepTypeUserVariable StepType = "USER_VARIABLES"
)

// LoopMode/LoopOnError/RequestArgsType are small closed enums used by
// the LOOP and HTTP step configurations.
type LoopMode string

const (
	LoopModeCount     LoopMode = "COUNT"
	LoopModeIterable  LoopMode = "ITERABLE"
	LoopModeDict      LoopMode = "DICT"
	LoopModeCondition LoopMode = "CONDITION"
)

type LoopOnError string

const (
	LoopOnErrorContinue LoopOnError = "CONTINUE"
	LoopOnErrorBreak    LoopOnError = "BREAK"
	LoopOnErrorStop     LoopOnError = "STOP"
)

type RequestArgsType string

const (
	ArgsTypeNone      RequestArgsType = "none"
	ArgsTypeParams    RequestArgsType = "params"
	ArgsTypeRaw       RequestArgsType = "raw"
	ArgsTypeJSON      RequestArgsType = "json"
	ArgsTypeFormData  RequestArgsType = "form-data"
	ArgsTypeURLEncode RequestArgsType = "x-www-form-urlencoded"
)

// ExtractVariable describes one entry of a step's extract_variables
// pipeline.
type ExtractVariable struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Range  string `json:"range"`
	Expr   string `json:"expr,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

// AssertValidator describes one entry of a step's assert_validators
// pipeline.
type AssertValidator struct {
	Name         string `json:"name"`
	Expr         string `json:"expr,omitempty"`
	Operation    string `json:"operation"`
	ExceptValue  Value  `json:"except_value"`
	Source       string `json:"source"`
}

// Condition is the {value, operation, except_value, desc} object used by
// IF steps and CONDITION loops.
type Condition struct {
	Value       Value  `json:"value"`
	Operation   string `json:"operation"`
	ExceptValue Value  `json:"except_value"`
	Desc        string `json:"desc,omitempty"`
}

// Step is one node in a case's execution tree; it forms a tree via
// ParentStepID (same-case only) and may reference another case via
// QuoteCaseID. Only LOOP and IF steps may have children.
type Step struct {
	ID           int64    `json:"step_id"`
	CaseID       int64    `json:"case_id"`
	StepNo       int      `json:"step_no"`
	StepCode     string   `json:"step_code"`
	StepName     string   `json:"step_name"`
	StepType     StepType `json:"step_type"`
	StepDesc     string   `json:"step_desc,omitempty"`
	StepDisabled bool     `json:"step_disabled,omitempty"`
	ParentStepID *int64   `json:"parent_step_id,omitempty"`
	QuoteCaseID  *int64   `json:"quote_case_id,omitempty"`

	// HTTP request fields.
	RequestURL        string          `json:"request_url,omitempty"`
	RequestPort       int             `json:"request_port,omitempty"`
	RequestMethod     string          `json:"request_method,omitempty"`
	RequestHeader     VariableList    `json:"request_header,omitempty"`
	RequestParams     VariableList    `json:"request_params,omitempty"`
	RequestFormData   VariableList    `json:"request_form_data,omitempty"`
	RequestFormFile   VariableList    `json:"request_form_file,omitempty"`
	RequestFormURLEnc VariableList    `json:"request_form_urlencoded,omitempty"`
	RequestBody       Value           `json:"request_body,omitempty"`
	RequestText       string          `json:"request_text,omitempty"`
	RequestArgsType   RequestArgsType `json:"request_args_type,omitempty"`
	RequestProjectID  int64           `json:"request_project_id,omitempty"`

	// Script / Wait.
	Code string  `json:"code,omitempty"`
	Wait float64 `json:"wait,omitempty"`

	// Loop configuration.
	LoopMode      LoopMode    `json:"loop_mode,omitempty"`
	LoopMaximums  int         `json:"loop_maximums,omitempty"`
	LoopInterval  float64     `json:"loop_interval,omitempty"`
	LoopIterable  string      `json:"loop_iterable,omitempty"`
	LoopIterIdx   string      `json:"loop_iter_idx,omitempty"`
	LoopIterKey   string      `json:"loop_iter_key,omitempty"`
	LoopIterVal   string      `json:"loop_iter_val,omitempty"`
	LoopOnError   LoopOnError `json:"loop_on_error,omitempty"`
	LoopTimeout   float64     `json:"loop_timeout,omitempty"`

	// Conditions (IF, and CONDITION loops), as a JSON string.
	Conditions string `json:"conditions,omitempty"`

	SessionVariables VariableList      `json:"session_variables,omitempty"`
	DefinedVariables VariableList      `json:"defined_variables,omitempty"`
	ExtractVariables []ExtractVariable `json:"extract_variables,omitempty"`
	AssertValidators []AssertValidator `json:"assert_validators,omitempty"`

	Children   []*Step `json:"children,omitempty"`
	QuoteSteps []*Step `json:"quote_steps,omitempty"`

	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReportType distinguishes how a run was triggered.
type ReportType string

const (
	ReportTypeSync  ReportType = "SYNC_EXEC"
	ReportTypeAsync ReportType = "ASYNC_EXEC"
	ReportTypeDebug ReportType = "DEBUG_EXEC"
)

// Report aggregates one case execution's pass/fail statistics.
type Report struct {
	ID            int64      `json:"id"`
	ReportCode    string     `json:"report_code"`
	CaseID        int64      `json:"case_id"`
	CaseCode      string     `json:"case_code"`
	ReportType    ReportType `json:"report_type"`
	TaskCode      string     `json:"task_code,omitempty"`
	BatchCode     string     `json:"batch_code,omitempty"`
	StepTotal     int        `json:"step_total"`
	StepFailCount int        `json:"step_fail_count"`
	StepPassCount int        `json:"step_pass_count"`
	StepPassRatio float64    `json:"step_pass_ratio"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	ElapsedSec    float64    `json:"elapsed_seconds"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Detail persists one executed step instance (one per loop cycle).
type Detail struct {
	ID               int64             `json:"id"`
	ReportCode       string            `json:"report_code"`
	CaseCode         string            `json:"case_code"`
	StepCode         string            `json:"step_code"`
	StepName         string            `json:"step_name"`
	StepType         StepType          `json:"step_type"`
	NumCycles        int               `json:"num_cycles"`
	Success          bool              `json:"success"`
	Message          string            `json:"message,omitempty"`
	ErrorText        string            `json:"error,omitempty"`
	Request          Value             `json:"request,omitempty"`
	Response         Value             `json:"response,omitempty"`
	SessionVariables VariableList      `json:"session_variables,omitempty"`
	DefinedVariables VariableList      `json:"defined_variables,omitempty"`
	ExtractVariables []ExtractVariable `json:"extract_variables,omitempty"`
	AssertValidators []AssertValidator `json:"assert_validators,omitempty"`
	Logs             []string          `json:"logs,omitempty"`
	StartTime        time.Time         `json:"start_time"`
	EndTime          time.Time         `json:"end_time"`
	ElapsedSec       float64           `json:"elapsed_seconds"`
}

// ScheduleKind selects which of the three due-calculations a Task uses.
type ScheduleKind string

const (
	ScheduleCron     ScheduleKind = "cron"
	ScheduleInterval ScheduleKind = "interval"
	ScheduleDatetime ScheduleKind = "datetime"
)

// Task is a scheduled job declaration.
type Task struct {
	ID                int64        `json:"id"`
	Code              string       `json:"code"`
	TaskName          string       `json:"task_name"`
	TaskProject       int64        `json:"task_project"`
	TaskDesc          string       `json:"task_desc,omitempty"`
	TaskTags          []int64      `json:"task_tags,omitempty"`
	ScheduleKind      ScheduleKind `json:"schedule_kind"`
	CrontabExpr       string       `json:"task_crontabs_expr,omitempty"`
	IntervalExpr      float64      `json:"task_interval_expr,omitempty"`
	DatetimeExpr      *time.Time   `json:"task_datetime_expr,omitempty"`
	TaskEnabled       bool         `json:"task_enabled"`
	TaskKwargs        TaskKwargs   `json:"task_kwargs"`
	LastExecuteTime   *time.Time   `json:"last_execute_time,omitempty"`
	LastExecuteState  string       `json:"last_execute_state,omitempty"`
	State             State        `json:"state"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// TaskKwargs is the payload carrying engine inputs for a scheduled run.
type TaskKwargs struct {
	CaseIDs          []int64      `json:"case_ids"`
	EnvName          string       `json:"env_name,omitempty"`
	InitialVariables VariableList `json:"initial_variables,omitempty"`
}

// RecordStatus is an execution record's lifecycle status.
type RecordStatus string

const (
	RecordStatusRunning RecordStatus = "RUNNING"
	RecordStatusSuccess RecordStatus = "SUCCESS"
	RecordStatusFailure RecordStatus = "FAILURE"
)

// Record is one dispatch's execution log.
type Record struct {
	ID              int64        `json:"id"`
	TaskID          int64        `json:"task_id"`
	TaskName        string       `json:"task_name"`
	TaskKwargs      TaskKwargs   `json:"task_kwargs"`
	CeleryID        string       `json:"celery_id"`
	CeleryNode      string       `json:"celery_node,omitempty"`
	CeleryTraceID   string       `json:"celery_trace_id"`
	CeleryStatus    RecordStatus `json:"celery_status"`
	CeleryScheduler ScheduleKind `json:"celery_scheduler"`
	StartTime       time.Time    `json:"celery_start_time"`
	EndTime         *time.Time   `json:"celery_end_time,omitempty"`
	DurationSec     float64      `json:"celery_duration,omitempty"`
	TaskSummary     string       `json:"task_summary,omitempty"`
	TaskError       string       `json:"task_error,omitempty"`
}
