// Package server exposes an executor over HTTP following the GraphQL over
// HTTP conventions: GET and POST, batched POST bodies, JSON responses.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	eventbus "github.com/hanpama/swgraph/internal/eventbus"
	events "github.com/hanpama/swgraph/internal/events"
	executor "github.com/hanpama/swgraph/internal/executor"
	"github.com/hanpama/swgraph/internal/introspection"
	language "github.com/hanpama/swgraph/internal/language"
	reqid "github.com/hanpama/swgraph/internal/reqid"
	schema "github.com/hanpama/swgraph/internal/schema"
	"github.com/samber/lo"
)

// StatusClientClosedRequest is recorded when the client goes away before a
// response could be written. Nothing is sent in that case.
const StatusClientClosedRequest = 499

const maxRequestIDLength = 128

// Handler is an http.Handler that serves a GraphQL endpoint.
// Queries are validated against the schema before they are executed.
type Handler struct {
	exec       *executor.Executor
	validation *language.Schema
	opt        Options
}

type Options struct {
	// Timeout bounds execution when the incoming request context has no
	// deadline. 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses.
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// Introspection serves __schema and __type.
	Introspection bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithIntrospection(enable bool) Option { return func(o *Options) { o.Introspection = enable } }

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a GraphQL HTTP handler serving sch through runtime.
func New(runtime executor.Runtime, sch *schema.Schema, opts ...Option) (*Handler, error) {
	op := Options{Timeout: 10 * time.Second, Introspection: true}
	for _, f := range opts {
		f(&op)
	}

	validation, err := language.LoadSchema("schema.graphql", schema.Render(sch))
	if err != nil {
		return nil, fmt.Errorf("schema does not validate: %w", err)
	}

	execSchema := sch
	if op.Introspection {
		wrapped := introspection.Wrap(runtime, sch)
		runtime, execSchema = wrapped, wrapped.Schema()
	}
	return &Handler{
		exec:       executor.NewExecutor(runtime, execSchema),
		validation: validation,
		opt:        op,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	var rid string
	if id := r.Header.Get(reqid.Header); id != "" && len(id) <= maxRequestIDLength {
		rid, ctx = id, reqid.WithID(ctx, id)
	} else {
		ctx, rid = reqid.NewContext(ctx)
	}
	w.Header().Set(reqid.Header, rid)

	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeJSON(w, status, errorResponse(&language.Error{Message: "method not allowed"}), h.opt.Pretty)
		return
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != nil {
		status = http.StatusBadRequest
		if berr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(berr), h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	var body any
	var cancelled bool
	if batch != nil {
		out := make([]any, len(batch))
		for i := range batch {
			res, c := h.executeOne(ctx, batch[i])
			if c {
				cancelled = true
				break
			}
			out[i] = res
		}
		body = out
	} else {
		body, cancelled = h.executeOne(ctx, req)
	}

	if cancelled {
		// The whole response is dropped; no partial data leaves the server.
		if errors.Is(r.Context().Err(), context.Canceled) {
			status = StatusClientClosedRequest
			return
		}
		status = http.StatusGatewayTimeout
		writeJSON(w, status, cancelledResponse(), h.opt.Pretty)
		return
	}
	writeJSON(w, status, body, h.opt.Pretty)
}

// executeOne validates and executes req. It reports whether execution was
// cancelled, in which case the returned response must not be sent.
func (h *Handler) executeOne(ctx context.Context, req GraphQLRequest) (any, bool) {
	doc, errs := language.LoadQuery(h.validation, req.Query)
	if len(errs) == 0 && !h.opt.Introspection {
		errs = rejectIntrospection(doc)
	}
	if len(errs) > 0 {
		return validationResponse(errs), false
	}

	opDef := doc.Operations.ForName(req.OperationName)
	if opDef == nil && req.OperationName == "" && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	opType := ""
	if opDef != nil {
		opType = string(opDef.Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)
	cancelled := result.Cancelled()
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        lo.Map(result.Errors, func(e executor.GraphQLError, _ int) error { return e }),
		Cancelled:     cancelled,
		Duration:      time.Since(start),
	})
	return result, cancelled
}

// rejectIntrospection reports every root __schema or __type selection,
// including those reached through fragments. __typename stays allowed.
func rejectIntrospection(doc *language.QueryDocument) language.ErrorList {
	var errs language.ErrorList
	seen := map[string]bool{}
	var walk func(set language.SelectionSet)
	walk = func(set language.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *language.Field:
				if sel.Name != "__schema" && sel.Name != "__type" {
					continue
				}
				err := &language.Error{Message: fmt.Sprintf("introspection is disabled: cannot query field %q", sel.Name)}
				if sel.Position != nil {
					err.Locations = []language.Location{{Line: sel.Position.Line, Column: sel.Position.Column}}
				}
				errs = append(errs, err)
			case *language.InlineFragment:
				walk(sel.SelectionSet)
			case *language.FragmentSpread:
				if seen[sel.Name] {
					continue
				}
				seen[sel.Name] = true
				if def := doc.Fragments.ForName(sel.Name); def != nil {
					walk(def.SelectionSet)
				}
			}
		}
	}
	for _, op := range doc.Operations {
		walk(op.SelectionSet)
	}
	return errs
}

// ------------------ Request parsing ------------------

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

func parseRequest(r *http.Request, maxBody int64) (GraphQLRequest, []GraphQLRequest, *language.Error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return GraphQLRequest{}, nil, &language.Error{Message: "missing 'query'"}
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return GraphQLRequest{}, nil, &language.Error{Message: "invalid 'variables' JSON"}
			}
		}
		op := r.URL.Query().Get("operationName")
		return GraphQLRequest{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return GraphQLRequest{}, nil, &language.Error{Message: "unsupported Content-Type"}
	}
	defer r.Body.Close()

	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return GraphQLRequest{}, nil, &language.Error{Message: "failed to read body"}
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return GraphQLRequest{}, nil, &language.Error{Message: errBodyTooLargeMessage}
	}

	if len(body) > 0 && body[0] == '[' {
		var arr []GraphQLRequest
		if err := json.Unmarshal(body, &arr); err != nil {
			return GraphQLRequest{}, nil, &language.Error{Message: "invalid JSON"}
		}
		if len(arr) == 0 {
			return GraphQLRequest{}, nil, &language.Error{Message: "empty batch"}
		}
		return GraphQLRequest{}, arr, nil
	}

	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return GraphQLRequest{}, nil, &language.Error{Message: "invalid JSON"}
	}
	if req.Query == "" {
		return GraphQLRequest{}, nil, &language.Error{Message: "missing 'query'"}
	}
	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	return req, nil, nil
}

// ------------------ Response formatting ------------------

type wireLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type wireError struct {
	Message    string         `json:"message"`
	Locations  []wireLocation `json:"locations,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// requestErrors is a response for a request that never reached execution.
// It carries no data key.
type requestErrors struct {
	Errors []wireError `json:"errors"`
}

func errorResponse(err *language.Error) requestErrors {
	return requestErrors{Errors: []wireError{{Message: err.Message}}}
}

func validationResponse(errs language.ErrorList) requestErrors {
	return requestErrors{Errors: lo.Map(errs, func(e *language.Error, _ int) wireError {
		return wireError{
			Message: e.Message,
			Locations: lo.Map(e.Locations, func(l language.Location, _ int) wireLocation {
				return wireLocation{Line: l.Line, Column: l.Column}
			}),
			Extensions: map[string]any{"code": CodeValidationFailed},
		}
	})}
}

func cancelledResponse() requestErrors {
	return requestErrors{Errors: []wireError{{
		Message:    executor.ErrCancelled.Error(),
		Extensions: map[string]any{"code": executor.CodeCancelled},
	}}}
}

// CodeValidationFailed marks errors found before execution.
const CodeValidationFailed = "GRAPHQL_VALIDATION_FAILED"

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := lo.Contains(opts.AllowedOrigins, "*")
	if !wildcard && !lo.Contains(opts.AllowedOrigins, origin) {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
	w.Header().Set("Access-Control-Expose-Headers", reqid.Header)
}
