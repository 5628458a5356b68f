package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	reqid "github.com/hanpama/bookgraph/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const tracerName = "bookgraph"

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	detach := newSubscriber(tp.Tracer(tracerName)).register()

	return func(ctx context.Context) error {
		detach()
		return tp.Shutdown(ctx)
	}, nil
}

// subscriber turns bus events into spans. Open spans are keyed by the request's
// reqid token rather than its id, which a client may reuse across requests. An
// HTTP request span parents the operation spans run inside it, and store appends
// become events on the operation span that caused them.
type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // reqid token -> trace.Span
	opSpans   sync.Map // reqid token -> trace.Span
}

func newSubscriber(tracer trace.Tracer) *subscriber {
	return &subscriber{tracer: tracer}
}

// register subscribes to the global bus and returns a function that removes
// every subscription.
func (s *subscriber) register() (detach func()) {
	unsubs := []func(){
		eventbus.Subscribe(s.httpStart),
		eventbus.Subscribe(s.httpFinish),
		eventbus.Subscribe(s.operationStart),
		eventbus.Subscribe(s.operationFinish),
		eventbus.Subscribe(func(ctx context.Context, e events.AuthorAdded) {
			s.appendEvent(ctx, "store.author_added",
				attribute.Int("author.id", e.ID),
				attribute.String("author.name", e.Name))
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.BookAdded) {
			s.appendEvent(ctx, "store.book_added",
				attribute.Int("book.id", e.ID),
				attribute.String("book.name", e.Name),
				attribute.Int("book.author_id", e.AuthorID))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (s *subscriber) httpStart(ctx context.Context, e events.HTTPStart) {
	tok, ok := reqid.Token(ctx)
	if !ok {
		return
	}
	rid, _ := reqid.FromContext(ctx)
	_, span := s.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		semconv.HTTPMethodKey.String(e.Request.Method),
		attribute.String("http.target", e.Request.URL.Path),
		attribute.String("request.id", rid),
	)
	s.httpSpans.Store(tok, span)
}

func (s *subscriber) httpFinish(ctx context.Context, e events.HTTPFinish) {
	tok, _ := reqid.Token(ctx)
	v, ok := s.httpSpans.LoadAndDelete(tok)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
	if e.Status >= 500 {
		span.SetStatus(codes.Error, "")
	}
	span.End()
}

func (s *subscriber) operationStart(ctx context.Context, e events.OperationStart) {
	tok, ok := reqid.Token(ctx)
	if !ok {
		return
	}
	parent := ctx
	if v, ok := s.httpSpans.Load(tok); ok {
		parent = trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	_, span := s.tracer.Start(parent, "graphql.operation")
	span.SetAttributes(
		attribute.String("graphql.operation.name", e.OperationName),
		attribute.String("graphql.operation.type", e.OperationType),
	)
	s.opSpans.Store(tok, span)
}

func (s *subscriber) operationFinish(ctx context.Context, e events.OperationFinish) {
	tok, _ := reqid.Token(ctx)
	v, ok := s.opSpans.LoadAndDelete(tok)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
	for _, err := range e.Errors {
		span.RecordError(err)
	}
	if len(e.Errors) > 0 {
		span.SetStatus(codes.Error, e.Errors[0].Error())
	}
	span.End()
}

func (s *subscriber) appendEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	tok, _ := reqid.Token(ctx)
	if v, ok := s.opSpans.Load(tok); ok {
		v.(trace.Span).AddEvent(name, trace.WithAttributes(attrs...))
	}
}
