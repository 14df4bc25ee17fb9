package engine

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/caseflow/caseflow/internal/model"
)

// executeHTTP implements the HTTP step executor.
func executeHTTP(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	if strings.TrimSpace(step.RequestURL) == "" {
		return model.NewParameterError("request_url", "required")
	}

	fullURL, err := resolveURL(ctx, ec, step)
	if err != nil {
		return err
	}

	headers := toStringMap(ec.ResolveList(mergeEnvHeaders(ctx, ec, step)))
	params := toStringMap(ec.ResolveList(step.RequestParams))

	httpReq := HTTPRequest{
		Method:  strings.ToUpper(step.RequestMethod),
		URL:     fullURL,
		Headers: headers,
		Params:  params,
	}
	if httpReq.Method == "" {
		httpReq.Method = http.MethodGet
	}

	if err := applyRequestBody(ec, step, &httpReq); err != nil {
		return err
	}

	res.Request = model.Map(map[string]model.Value{
		"method":  model.String(httpReq.Method),
		"url":     model.String(httpReq.URL),
		"headers": toValueMap(headers),
		"params":  toValueMap(params),
	})

	resp, err := ec.SendHTTPRequest(ctx, httpReq)
	if err != nil {
		return err
	}

	res.Response = model.Map(map[string]model.Value{
		"status_code": model.Int(int64(resp.StatusCode)),
		"headers":     toValueMap(resp.Headers),
		"cookies":     toValueMap(resp.Cookies),
		"text":        model.String(resp.Text),
		"elapsed":     model.Float(resp.ElapsedSec),
	})
	res.Success = true

	ec2 := extractContext{resp: resp, vars: ec.SessionVariables}
	for _, entry := range step.ExtractVariables {
		res.ExtractVariables = append(res.ExtractVariables, runExtract(ec2, entry))
	}
	for _, v := range step.AssertValidators {
		res.AssertValidators = append(res.AssertValidators, runAssert(ec2, v))
	}

	return nil
}

// resolveURL builds the final URL: if request_url does not start with
// "http", the step's environment supplies host/port.
func resolveURL(ctx context.Context, ec *Context, step *model.Step) (string, error) {
	relative := ec.ResolvePlaceholders(model.String(step.RequestURL)).AsString()
	if strings.HasPrefix(strings.ToLower(relative), "http") {
		return relative, nil
	}
	if ec.LookupEnvironment == nil {
		return "", model.NewNotFoundError("environment", ec.EnvName)
	}
	env, ok, err := ec.LookupEnvironment(ctx, step.RequestProjectID, ec.EnvName)
	if err != nil {
		return "", fmt.Errorf("look up environment: %w", err)
	}
	if !ok {
		return "", model.NewNotFoundError("environment", ec.EnvName+" not configured")
	}
	host := strings.TrimSuffix(env.Host, "/")
	port := env.Port
	if step.RequestPort != 0 {
		port = step.RequestPort
	}
	rel := strings.TrimPrefix(relative, "/")
	if port == 0 {
		return host + "/" + rel, nil
	}
	return host + ":" + strconv.Itoa(port) + "/" + rel, nil
}

// mergeEnvHeaders merges the environment's global headers under any
// header name the step itself does not set.
func mergeEnvHeaders(ctx context.Context, ec *Context, step *model.Step) model.VariableList {
	out := step.RequestHeader.Clone()
	if ec.LookupEnvironment == nil {
		return out
	}
	env, ok, err := ec.LookupEnvironment(ctx, step.RequestProjectID, ec.EnvName)
	if err != nil || !ok {
		return out
	}
	for _, g := range env.GlobalHeaders {
		if _, present := out.Get(g.Key); !present {
			out = append(out, g)
		}
	}
	return out
}

func applyRequestBody(ec *Context, step *model.Step, req *HTTPRequest) error {
	switch step.RequestArgsType {
	case "":
		return applyFallbackBody(ec, step, req)
	case model.ArgsTypeNone, model.ArgsTypeParams:
		return nil
	case model.ArgsTypeRaw:
		req.Body = strings.NewReader(ec.ResolvePlaceholders(model.String(step.RequestText)).AsString())
		return nil
	case model.ArgsTypeJSON:
		body := ec.ResolvePlaceholders(step.RequestBody)
		req.Body = strings.NewReader(body.AsString())
		req.IsJSON = true
		return nil
	case model.ArgsTypeFormData:
		fields := toStringMap(ec.ResolveList(step.RequestFormData))
		files := toStringMap(ec.ResolveList(step.RequestFormFile))
		body, contentType, err := BuildFormData(fields, files)
		if err != nil {
			return fmt.Errorf("build form data: %w", err)
		}
		req.Body = body
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers["Content-Type"] = contentType
		return nil
	case model.ArgsTypeURLEncode:
		form := toStringMap(ec.ResolveList(step.RequestFormURLEnc))
		req.Body = strings.NewReader(encodeForm(form))
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers["Content-Type"] = "application/x-www-form-urlencoded"
		return nil
	default:
		return model.NewParameterError("request_args_type", "unknown: "+string(step.RequestArgsType))
	}
}

// applyFallbackBody implements the unconfigured fallback order:
// raw -> form-data/files -> urlencoded -> json.
func applyFallbackBody(ec *Context, step *model.Step, req *HTTPRequest) error {
	if step.RequestText != "" {
		req.Body = strings.NewReader(ec.ResolvePlaceholders(model.String(step.RequestText)).AsString())
		return nil
	}
	if len(step.RequestFormData) > 0 || len(step.RequestFormFile) > 0 {
		fields := toStringMap(ec.ResolveList(step.RequestFormData))
		files := toStringMap(ec.ResolveList(step.RequestFormFile))
		body, contentType, err := BuildFormData(fields, files)
		if err != nil {
			return fmt.Errorf("build form data: %w", err)
		}
		req.Body = body
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers["Content-Type"] = contentType
		return nil
	}
	if len(step.RequestFormURLEnc) > 0 {
		form := toStringMap(ec.ResolveList(step.RequestFormURLEnc))
		req.Body = strings.NewReader(encodeForm(form))
		if req.Headers == nil {
			req.Headers = map[string]string{}
		}
		req.Headers["Content-Type"] = "application/x-www-form-urlencoded"
		return nil
	}
	if !step.RequestBody.IsNull() {
		req.Body = strings.NewReader(ec.ResolvePlaceholders(step.RequestBody).AsString())
		req.IsJSON = true
	}
	return nil
}

func encodeForm(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for k, v := range fields {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, "&")
}

func toStringMap(list model.VariableList) map[string]string {
	out := make(map[string]string, len(list))
	for _, e := range list {
		out[e.Key] = e.Value.AsString()
	}
	return out
}

func toValueMap(m map[string]string) model.Value {
	out := make(map[string]model.Value, len(m))
	for k, v := range m {
		out[k] = model.String(v)
	}
	return model.Map(out)
}
