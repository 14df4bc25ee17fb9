package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/resolver"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultConnectTimeout = 10 * time.Second
	maxSleepSeconds        = 300
)

// EnvironmentLookup resolves an Environment by (project, name) for HTTP
// steps whose request_url is relative.
type EnvironmentLookup func(ctx context.Context, projectID int64, envName string) (*model.Environment, bool, error)

// CaseLookup resolves a PUBLIC_SCRIPT case and its root steps for the
// QuoteCase executor.
type CaseLookup func(ctx context.Context, quoteCaseID int64) (*model.Case, []*model.Step, error)

// Context is the execution context: the variable pool, the per-step log
// buffer, the cycle index, and the HTTP client a running case shares
// across all of its steps.
type Context struct {
	CaseID     int64
	CaseCode   string
	EnvName    string
	ReportCode string // empty when the caller runs in pure-debug mode

	ProjectID int64

	DefinedVariables model.VariableList
	SessionVariables model.VariableList

	logs            map[string][]string
	cycleIndex      map[string]int
	currentStepCode string

	// PendingDetails is the deferred-save buffer runStep appends to, one
	// entry per executed step instance (so a LOOP's repeated children
	// each keep their own row instead of collapsing into one); nil when
	// ReportCode is empty. The Case Runner flushes it via FinalizeDetails
	// once the case finishes running.
	PendingDetails []*model.Detail

	httpClient *http.Client

	Resolve      func(model.Value) model.Value
	ResolveList  func(model.VariableList) model.VariableList
	ResolveCode  func(string) string

	LookupEnvironment EnvironmentLookup
	LookupQuoteCase   CaseLookup

	// Logf receives one structured line per significant context
	// operation (resolution failures, HTTP sends); wired to
	// internal/obslog by the caller. Nil discards silently.
	Logf func(format string, args ...any)
}

// New builds a Context backed by the given resolver and variable seed.
func New(res *resolver.Resolver, caseID int64, caseCode, envName string, projectID int64, initial model.VariableList) *Context {
	c := &Context{
		CaseID:           caseID,
		CaseCode:         caseCode,
		EnvName:          envName,
		ProjectID:        projectID,
		SessionVariables: initial.Clone(),
		logs:             map[string][]string{},
		cycleIndex:       map[string]int{},
	}
	if res != nil {
		c.Resolve = res.Resolve
		c.ResolveList = res.ResolveVariableList
		c.ResolveCode = res.ResolveCode
	} else {
		c.Resolve = func(v model.Value) model.Value { return v }
		c.ResolveList = func(l model.VariableList) model.VariableList { return l }
		c.ResolveCode = func(s string) string { return s }
	}
	return c
}

// Enter builds the long-lived HTTP client for this case run. Exit closes
// it. All HTTP use must happen between the two.
func (c *Context) Enter() {
	c.httpClient = &http.Client{
		Timeout: defaultHTTPTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: defaultConnectTimeout}).DialContext,
		},
	}
}

// Exit releases the HTTP client's idle connections.
func (c *Context) Exit() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}

func (c *Context) logf(format string, args ...any) {
	if c.Logf != nil {
		c.Logf(format, args...)
	}
}

// SetCurrentStep points subsequent LogStep calls at stepCode and returns
// the previous value so the caller can restore it.
func (c *Context) SetCurrentStep(stepCode string) string {
	prev := c.currentStepCode
	c.currentStepCode = stepCode
	return prev
}

// RestoreCurrentStep restores a previously captured current step code.
func (c *Context) RestoreCurrentStep(prev string) {
	c.currentStepCode = prev
}

// NextCycle advances and returns the 1-based cycle index for stepCode,
// used for Detail uniqueness under loops.
func (c *Context) NextCycle(stepCode string) int {
	c.cycleIndex[stepCode]++
	return c.cycleIndex[stepCode]
}

// LogStep appends one timestamped line to the current step's log buffer.
func (c *Context) LogStep(message string) {
	if c.currentStepCode == "" {
		return
	}
	line := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05.000"), message)
	c.logs[c.currentStepCode] = append(c.logs[c.currentStepCode], line)
}

// LogsFor returns the accumulated log lines for a step code.
func (c *Context) LogsFor(stepCode string) []string {
	return c.logs[stepCode]
}

// GetVariable searches defined_variables then session_variables; the
// defined_variables entry wins on a name collision.
func (c *Context) GetVariable(name string) (model.Value, bool) {
	if v, ok := c.DefinedVariables.Get(name); ok {
		return v, true
	}
	return c.SessionVariables.Get(name)
}

// VariableScope selects which pool UpdateVariables writes into.
type VariableScope int

const (
	ScopeDefinedVariables VariableScope = iota
	ScopeSessionVariables
)

// UpdateVariables upserts each entry of list into the selected scope.
func (c *Context) UpdateVariables(list model.VariableList, scope VariableScope) {
	target := &c.SessionVariables
	if scope == ScopeDefinedVariables {
		target = &c.DefinedVariables
	}
	for _, e := range list {
		target.Upsert(e.Key, e.Value, e.Desc)
	}
}

// SetDefinedVariables replaces the defined_variables pool wholesale, the
// per-step reset pre-step bullet 4 requires.
func (c *Context) SetDefinedVariables(list model.VariableList) {
	c.DefinedVariables = list.Clone()
}

// ResolvePlaceholders applies the C1 resolver recursively; non-string
// scalars pass through untouched.
func (c *Context) ResolvePlaceholders(v model.Value) model.Value {
	return c.Resolve(v)
}

// Sleep rejects a negative or >300s duration and cooperatively waits,
// respecting ctx cancellation.
func (c *Context) Sleep(ctx context.Context, seconds float64) error {
	if seconds < 0 {
		return model.NewParameterError("wait", "must be non-negative")
	}
	if seconds > maxSleepSeconds {
		return model.NewParameterError("wait", fmt.Sprintf("must be <= %ds", maxSleepSeconds))
	}
	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTTPRequest is the resolved, ready-to-send shape of an HTTP step.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Params  map[string]string
	Body    io.Reader
	IsJSON  bool
}

// HTTPResponse is the context's uniform echo of a sent request's result.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Cookies    map[string]string
	Text       string
	JSON       model.Value // Null() when the body does not parse as JSON
	ElapsedSec float64
}

// SendHTTPRequest issues req through the context's shared client and
// translates transport failures into a StepExecutionError classified as
// network/timeout/unknown.
func (c *Context) SendHTTPRequest(ctx context.Context, req HTTPRequest) (*HTTPResponse, error) {
	if c.httpClient == nil {
		c.Enter()
	}
	fullURL := req.URL
	if len(req.Params) > 0 {
		q := url.Values{}
		for k, v := range req.Params {
			q.Set(k, v)
		}
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL = fullURL + sep + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, req.Body)
	if err != nil {
		return nil, model.NewStepExecutionError(model.ErrKindUnknown, "build request: "+err.Error(), err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.IsJSON && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	c.logf("http %s %s headers=%v params=%v", req.Method, req.URL, redactedHeaders(req.Headers), req.Params)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		kind := model.ErrKindUnknown
		if ctx.Err() != nil {
			kind = model.ErrKindTimeout
		} else if isNetworkError(err) {
			kind = model.ErrKindNetwork
		}
		c.logf("http %s %s failed after %.6fs: %v", req.Method, req.URL, elapsed, err)
		return nil, model.NewStepExecutionError(kind, err.Error(), err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewStepExecutionError(model.ErrKindNetwork, "read response: "+err.Error(), err)
	}

	headers := map[string]string{}
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	cookies := map[string]string{}
	for _, ck := range resp.Cookies() {
		cookies[ck.Name] = ck.Value
	}

	var parsed any
	jsonVal := model.Null()
	if json.Unmarshal(bodyBytes, &parsed) == nil {
		jsonVal = model.FromAny(parsed)
	}

	c.logf("http %s %s -> %d in %.6fs", req.Method, req.URL, resp.StatusCode, elapsed)

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Cookies:    cookies,
		Text:       string(bodyBytes),
		JSON:       jsonVal,
		ElapsedSec: elapsed,
	}, nil
}

func redactedHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.EqualFold(k, "authorization") || strings.EqualFold(k, "cookie") {
			out[k] = "[redacted]"
			continue
		}
		out[k] = v
	}
	return out
}

func isNetworkError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "connection reset")
}

// BuildFormData multipart-encodes form fields and files for
// request_args_type=form-data.
func BuildFormData(fields map[string]string, files map[string]string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for name, content := range files {
		fw, err := w.CreateFormFile(name, name)
		if err != nil {
			return nil, "", err
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
