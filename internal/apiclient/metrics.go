package apiclient

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"
)

const HeaderRequestID = "X-Request-ID"

type telemetry struct {
	tracer  trace.Tracer
	counter metric.Int64Counter
	hist    metric.Int64Histogram
	attrs   []attribute.KeyValue
}

// WithTelemetry records spans and request metrics tagged with the application attributes.
func WithTelemetry(app commoncfg.Application) Option {
	return func(o *options) {
		o.telemetry = newTelemetry(&app)
	}
}

func newTelemetry(app *commoncfg.Application) *telemetry {
	name := "inventario-client"

	var attrs []attribute.KeyValue
	if app != nil {
		attrs = otlp.CreateAttributesFrom(*app)
		if app.Name != "" {
			name = app.Name
		}
	}

	meter := otel.Meter(
		"inventario/"+name,
		metric.WithInstrumentationVersion(otel.Version()),
		metric.WithInstrumentationAttributes(attrs...),
	)

	t := &telemetry{
		tracer: otel.Tracer("inventario/"+name+"/apiclient", trace.WithInstrumentationAttributes(attrs...)),
		attrs:  attrs,
	}

	var err error

	t.counter, err = meter.Int64Counter(
		"http.client.request_count",
		metric.WithDescription("Outgoing request count"),
		metric.WithUnit("request"),
	)
	if err != nil {
		t.counter = noop.Int64Counter{}
	}

	t.hist, err = meter.Int64Histogram(
		"http.client.duration",
		metric.WithDescription("Outgoing end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		t.hist = noop.Int64Histogram{}
	}

	return t
}

type instrumentedRoundTripper struct {
	telemetry *telemetry
	next      http.RoundTripper
}

func (t *instrumentedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx := slogctx.With(req.Context(), commoncfg.AttrRequestID, requestID)

	ctx, span := t.telemetry.tracer.Start(ctx, req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(t.telemetry.attrs...),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	req = req.Clone(ctx)
	req.Header.Set(HeaderRequestID, requestID)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	requestStartTime := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsedTime := time.Since(requestStartTime)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	attrs := metric.WithAttributes(append([]attribute.KeyValue{
		attribute.String("http.request.method", req.Method),
		attribute.Int("http.response.status_code", status),
	}, t.telemetry.attrs...)...)
	t.telemetry.counter.Add(ctx, 1, attrs)
	t.telemetry.hist.Record(ctx, elapsedTime.Milliseconds(), attrs)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}

	slogctx.Debug(ctx, "API request finished", "method", req.Method, "path", req.URL.Path, "status", status, "duration", elapsedTime)

	return resp, nil
}
