package server

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type Observability struct {
	Tracer oteltrace.Tracer
	Meter  metric.Meter

	traceProvider *sdktrace.TracerProvider
	ScoreCounter  metric.Int64Counter
	ScoreDuration metric.Int64Histogram
	JudgeCalls    metric.Int64Counter
	CacheHits     metric.Int64Counter
	RuleHits      metric.Int64Counter
}

func SetupObservability(ctx context.Context, cfg ObservabilityConfig) (*Observability, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "medsafe-api"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	sampler := sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	if cfg.OTLPEndpoint != "" {
		exporter, exportErr := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if exportErr != nil {
			return nil, fmt.Errorf("create otlp trace exporter: %w", exportErr)
		}
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		)
	} else {
		slog.Info("otel trace exporter not configured; using local tracer provider")
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	meter := otel.Meter(serviceName)
	tracer := otel.Tracer(serviceName)
	scoreCounter, _ := meter.Int64Counter("reward_score_total")
	scoreDuration, _ := meter.Int64Histogram("reward_score_duration_ms")
	judgeCalls, _ := meter.Int64Counter("judge_live_calls_total")
	cacheHits, _ := meter.Int64Counter("judge_cache_hits_total")
	ruleHits, _ := meter.Int64Counter("safety_rule_hits_total")
	return &Observability{
		Tracer:        tracer,
		Meter:         meter,
		traceProvider: tp,
		ScoreCounter:  scoreCounter,
		ScoreDuration: scoreDuration,
		JudgeCalls:    judgeCalls,
		CacheHits:     cacheHits,
		RuleHits:      ruleHits,
	}, nil
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.traceProvider == nil {
		return nil
	}
	return o.traceProvider.Shutdown(ctx)
}

func (o *Observability) MarkScore(ctx context.Context, durationMS int64) {
	if o == nil {
		return
	}
	o.ScoreCounter.Add(ctx, 1)
	o.ScoreDuration.Record(ctx, durationMS)
}

func (o *Observability) MarkRuleHit(ctx context.Context, ruleID string) {
	if o == nil {
		return
	}
	o.RuleHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("rule", ruleID),
	))
}

func (o *Observability) MarkJudge(ctx context.Context, cacheHit bool) {
	if o == nil {
		return
	}
	if cacheHit {
		o.CacheHits.Add(ctx, 1)
		return
	}
	o.JudgeCalls.Add(ctx, 1)
}
