/*
Package tracing provides lightweight request and flow tracing.

# Overview

Spans are created per HTTP request and per action flow run. Trace context
travels through context.Context and X-Trace-ID / X-Span-ID headers, so a
Request action issued by a flow carries the trace of the API call that
fired it. Finished spans are reported through zap by a background collector.

# Usage

	tracer := tracing.New("studio", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	err := tracer.Trace(ctx, "flow.run", func(ctx context.Context, span *tracing.Span) error {
		span.SetTag("flow_id", flow.ID)
		return run(ctx)
	})
*/
package tracing
