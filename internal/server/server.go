package server

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	executor "github.com/hanpama/bookgraph/internal/executor"
	language "github.com/hanpama/bookgraph/internal/language"
	reqid "github.com/hanpama/bookgraph/internal/reqid"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler serves the library graph over HTTP. Queries arrive as GET parameters or
// JSON bodies (single or batched); mutations only as POST.
type Handler struct {
	exec *executor.Executor
	opt  Options
}

type Options struct {
	// Timeout bounds requests whose context has no deadline. 0 disables it.
	Timeout time.Duration

	// Pretty indents JSON responses.
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS headers are only written when AllowedOrigins is non-empty.
	CORS CORSOptions

	GraphiQL bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

// CORSOptions lists the origins allowed to call the endpoint; "*" allows any.
type CORSOptions struct {
	AllowedOrigins []string
}

func WithGraphiQL(enable bool) Option { return func(o *Options) { o.GraphiQL = enable } }

// New creates a GraphQL HTTP handler that runs every request through exec.
func New(exec *executor.Executor, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second, GraphiQL: true}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{exec: exec, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.WithID(ctx, r.Header.Get(reqid.Header))
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
		writeJSON(w, status, errorResponse(&language.Error{Message: "method not allowed"}), h.opt.Pretty)
		return
	}

	// A browser opening the endpoint without a query gets the IDE.
	if r.Method == http.MethodGet && h.opt.GraphiQL && acceptsHTML(r.Header.Get("Accept")) && r.URL.Query().Get("query") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(graphiqlPage)
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

	if batch != nil {
		// Items of a batch fail independently, so the batch itself stays 200.
		out := lo.Map(batch, func(req GraphQLRequest, _ int) specResult {
			res, _ := h.executeOne(ctx, r.Method, req)
			return res
		})
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	var res specResult
	res, status = h.executeOne(ctx, r.Method, req)
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", http.MethodPost)
	}
	writeJSON(w, status, res, h.opt.Pretty)
}

// executeOne runs a single request and returns its body with the HTTP status.
// Documents that cannot be decoded into an operation answer 400. Mutations are
// only accepted over POST.
func (h *Handler) executeOne(ctx context.Context, method string, req GraphQLRequest) (specResult, int) {
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return errorResponse(language.AsError(err)), http.StatusBadRequest
	}

	opDef := doc.Operations.ForName(req.OperationName)
	if opDef == nil && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	opType := ""
	if opDef != nil {
		opType = string(opDef.Operation)
	}
	if method == http.MethodGet && opDef != nil && opDef.Operation == language.Mutation {
		return errorResponse(&language.Error{Message: errMutationOverGetMessage}), http.StatusMethodNotAllowed
	}

	start := time.Now()
	eventbus.Publish(ctx, events.OperationStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables)
	eventbus.Publish(ctx, events.OperationFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        lo.Map(result.Errors, func(e executor.GraphQLError, _ int) error { return e }),
		Duration:      time.Since(start),
	})

	status := http.StatusOK
	if lo.ContainsBy(result.Errors, func(e executor.GraphQLError) bool { return e.Kind == executor.ErrInvalidRequest }) {
		status = http.StatusBadRequest
	}
	return toSpecResult(result), status
}

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

func badRequest(msg string) *language.Error { return &language.Error{Message: msg} }

// parseRequest decodes r into a single request or, for a JSON array body, a batch.
func parseRequest(r *http.Request, maxBody int64) (GraphQLRequest, []GraphQLRequest, *language.Error) {
	if r.Method == http.MethodGet {
		req, err := requestFromQuery(r.URL.Query())
		return req, nil, err
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, _ := strings.Cut(ct, ";"); strings.TrimSpace(mt) != "application/json" {
			return GraphQLRequest{}, nil, badRequest("unsupported Content-Type")
		}
	}
	body, lerr := readBody(r, maxBody)
	if lerr != nil {
		return GraphQLRequest{}, nil, lerr
	}

	if len(body) > 0 && body[0] == '[' {
		var batch []GraphQLRequest
		switch {
		case json.Unmarshal(body, &batch) != nil:
			return GraphQLRequest{}, nil, badRequest("invalid JSON")
		case len(batch) == 0:
			return GraphQLRequest{}, nil, badRequest("empty batch")
		}
		return GraphQLRequest{}, batch, nil
	}

	var req GraphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return GraphQLRequest{}, nil, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return GraphQLRequest{}, nil, badRequest("missing 'query'")
	}
	return req, nil, nil
}

func requestFromQuery(values url.Values) (GraphQLRequest, *language.Error) {
	req := GraphQLRequest{
		Query:         values.Get("query"),
		OperationName: values.Get("operationName"),
		Variables:     map[string]any{},
	}
	if req.Query == "" {
		return GraphQLRequest{}, badRequest("missing 'query'")
	}
	if raw := values.Get("variables"); raw != "" {
		if err := json.UnmarshalFromString(raw, &req.Variables); err != nil {
			return GraphQLRequest{}, badRequest("invalid 'variables' JSON")
		}
	}
	return req, nil
}

// readBody reads at most maxBody bytes; one byte more marks the body too large.
func readBody(r *http.Request, maxBody int64) ([]byte, *language.Error) {
	defer r.Body.Close()
	var reader io.Reader = r.Body
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, badRequest("failed to read body")
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return nil, badRequest(errBodyTooLargeMessage)
	}
	return body, nil
}

type specLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type specError struct {
	Message    string         `json:"message"`
	Locations  []specLocation `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type specResult struct {
	Data   map[string]any `json:"data"`
	Errors []specError    `json:"errors,omitempty"`
}

func errorResponse(err *language.Error) specResult {
	se := specError{
		Message: err.Message,
		Locations: lo.Map(err.Locations, func(l language.Location, _ int) specLocation {
			return specLocation{Line: l.Line, Column: l.Column}
		}),
	}
	if len(se.Locations) == 0 {
		se.Locations = nil
	}
	return specResult{Errors: []specError{se}}
}

func toSpecResult(res *executor.ExecutionResult) specResult {
	out := specResult{Data: res.Data}
	if len(res.Errors) == 0 {
		return out
	}
	out.Errors = make([]specError, len(res.Errors))
	for i, e := range res.Errors {
		se := specError{Message: e.Message, Extensions: e.Extensions}
		if len(e.Path) > 0 {
			se.Path = make([]any, len(e.Path))
			for j, pe := range e.Path {
				se.Path[j] = pe
			}
		}
		out.Errors[i] = se
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const (
	errBodyTooLargeMessage    = "body too large"
	errMutationOverGetMessage = "Can only perform a mutation operation from a POST request."
)

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
	w.Header().Set("Access-Control-Expose-Headers", reqid.Header)
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func acceptsHTML(accept string) bool {
	for _, p := range strings.Split(accept, ",") {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "text/html") || p == "*/*" {
			return true
		}
	}
	return false
}
