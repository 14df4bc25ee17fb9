package postgres

import "github.com/caseflow/caseflow/internal/model"

// stepPayload carries every type-specific Step field as one jsonb column;
// steps are a ~30-field sparse sum type (HTTP-only, loop-only, script-only
// fields) and flattening all of them into individual columns would mean
// nearly every row is mostly NULL. The identity/ordering columns
// (case_id, step_no, step_code, step_type, parent_step_id, quote_case_id)
// stay as real columns since LoadTree and CreateTree filter/sort on them.
type stepPayload struct {
	StepDesc     string `json:"step_desc,omitempty"`
	StepDisabled bool   `json:"step_disabled,omitempty"`

	RequestURL        string                  `json:"request_url,omitempty"`
	RequestPort       int                     `json:"request_port,omitempty"`
	RequestMethod     string                  `json:"request_method,omitempty"`
	RequestHeader     model.VariableList      `json:"request_header,omitempty"`
	RequestParams     model.VariableList      `json:"request_params,omitempty"`
	RequestFormData   model.VariableList      `json:"request_form_data,omitempty"`
	RequestFormFile   model.VariableList      `json:"request_form_file,omitempty"`
	RequestFormURLEnc model.VariableList      `json:"request_form_urlencoded,omitempty"`
	RequestBody       model.Value             `json:"request_body,omitempty"`
	RequestText       string                  `json:"request_text,omitempty"`
	RequestArgsType   model.RequestArgsType   `json:"request_args_type,omitempty"`
	RequestProjectID  int64                   `json:"request_project_id,omitempty"`

	Code string  `json:"code,omitempty"`
	Wait float64 `json:"wait,omitempty"`

	LoopMode     model.LoopMode    `json:"loop_mode,omitempty"`
	LoopMaximums int               `json:"loop_maximums,omitempty"`
	LoopInterval float64           `json:"loop_interval,omitempty"`
	LoopIterable string            `json:"loop_iterable,omitempty"`
	LoopIterIdx  string            `json:"loop_iter_idx,omitempty"`
	LoopIterKey  string            `json:"loop_iter_key,omitempty"`
	LoopIterVal  string            `json:"loop_iter_val,omitempty"`
	LoopOnError  model.LoopOnError `json:"loop_on_error,omitempty"`
	LoopTimeout  float64           `json:"loop_timeout,omitempty"`

	Conditions string `json:"conditions,omitempty"`

	SessionVariables model.VariableList      `json:"session_variables,omitempty"`
	DefinedVariables model.VariableList      `json:"defined_variables,omitempty"`
	ExtractVariables []model.ExtractVariable `json:"extract_variables,omitempty"`
	AssertValidators []model.AssertValidator `json:"assert_validators,omitempty"`
}

func toStepPayload(s *model.Step) stepPayload {
	return stepPayload{
		StepDesc:          s.StepDesc,
		StepDisabled:      s.StepDisabled,
		RequestURL:        s.RequestURL,
		RequestPort:       s.RequestPort,
		RequestMethod:     s.RequestMethod,
		RequestHeader:     s.RequestHeader,
		RequestParams:     s.RequestParams,
		RequestFormData:   s.RequestFormData,
		RequestFormFile:   s.RequestFormFile,
		RequestFormURLEnc: s.RequestFormURLEnc,
		RequestBody:       s.RequestBody,
		RequestText:       s.RequestText,
		RequestArgsType:   s.RequestArgsType,
		RequestProjectID:  s.RequestProjectID,
		Code:              s.Code,
		Wait:              s.Wait,
		LoopMode:          s.LoopMode,
		LoopMaximums:      s.LoopMaximums,
		LoopInterval:      s.LoopInterval,
		LoopIterable:      s.LoopIterable,
		LoopIterIdx:       s.LoopIterIdx,
		LoopIterKey:       s.LoopIterKey,
		LoopIterVal:       s.LoopIterVal,
		LoopOnError:       s.LoopOnError,
		LoopTimeout:       s.LoopTimeout,
		Conditions:        s.Conditions,
		SessionVariables:  s.SessionVariables,
		DefinedVariables:  s.DefinedVariables,
		ExtractVariables:  s.ExtractVariables,
		AssertValidators:  s.AssertValidators,
	}
}

func applyStepPayload(s *model.Step, p stepPayload) {
	s.StepDesc = p.StepDesc
	s.StepDisabled = p.StepDisabled
	s.RequestURL = p.RequestURL
	s.RequestPort = p.RequestPort
	s.RequestMethod = p.RequestMethod
	s.RequestHeader = p.RequestHeader
	s.RequestParams = p.RequestParams
	s.RequestFormData = p.RequestFormData
	s.RequestFormFile = p.RequestFormFile
	s.RequestFormURLEnc = p.RequestFormURLEnc
	s.RequestBody = p.RequestBody
	s.RequestText = p.RequestText
	s.RequestArgsType = p.RequestArgsType
	s.RequestProjectID = p.RequestProjectID
	s.Code = p.Code
	s.Wait = p.Wait
	s.LoopMode = p.LoopMode
	s.LoopMaximums = p.LoopMaximums
	s.LoopInterval = p.LoopInterval
	s.LoopIterable = p.LoopIterable
	s.LoopIterIdx = p.LoopIterIdx
	s.LoopIterKey = p.LoopIterKey
	s.LoopIterVal = p.LoopIterVal
	s.LoopOnError = p.LoopOnError
	s.LoopTimeout = p.LoopTimeout
	s.Conditions = p.Conditions
	s.SessionVariables = p.SessionVariables
	s.DefinedVariables = p.DefinedVariables
	s.ExtractVariables = p.ExtractVariables
	s.AssertValidators = p.AssertValidators
}
