// Package trace wires OpenTelemetry into pageflow. A TracerProvider is built
// from the --traces-output configuration line and handed to the navigator,
// which opens one span per visited destination.
package trace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/liuxd6825/pageflow/lib/strvals"
)

const serviceName = "pageflow"

var (
	// ErrInvalidTracesOutput indicates that the defined traces output is not valid.
	ErrInvalidTracesOutput = errors.New("invalid traces output")
	// ErrInvalidProto indicates that the defined exporter protocol is not valid.
	ErrInvalidProto = errors.New("invalid protocol")
	// ErrInvalidURLScheme indicates that the defined exporter URL scheme is not valid.
	ErrInvalidURLScheme = errors.New("invalid URL scheme")
	// ErrInvalidGRPCWithURLPath indicates that an exporter using gRPC protocol does not support URL path.
	ErrInvalidGRPCWithURLPath = errors.New("grpc protocol does not support URL path")
)

// TracerProvider wraps an OTEL provider together with its shutdown func.
type TracerProvider struct {
	trace.TracerProvider
	shutdown func(ctx context.Context) error
}

type providerParams struct {
	proto    string
	endpoint string
	urlPath  string
	insecure bool
	headers  map[string]string
}

func defaultProviderParams() providerParams {
	return providerParams{
		proto:    "grpc",
		endpoint: "127.0.0.1:4317",
		insecure: true,
		headers:  make(map[string]string),
	}
}

func newTracerProvider(ctx context.Context, params providerParams) (*TracerProvider, error) {
	var client otlptrace.Client
	switch params.proto {
	case "http":
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(params.endpoint),
			otlptracehttp.WithURLPath(params.urlPath),
			otlptracehttp.WithHeaders(params.headers),
		}
		if params.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		client = otlptracehttp.NewClient(opts...)
	case "grpc":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(params.endpoint),
			otlptracegrpc.WithHeaders(params.headers),
		}
		if params.insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		client = otlptracegrpc.NewClient(opts...)
	default:
		return nil, ErrInvalidProto
	}

	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("creating traces exporter: %w", err)
	}

	prov := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		)),
	)

	return &TracerProvider{
		TracerProvider: prov,
		shutdown:       prov.Shutdown,
	}, nil
}

// NewNoopTracerProvider creates a TracerProvider which discards every span.
// It is what the command uses when no traces output was configured.
func NewNoopTracerProvider() *TracerProvider {
	prov := noop.NewTracerProvider()
	otel.SetTracerProvider(prov)

	return &TracerProvider{
		TracerProvider: prov,
		shutdown:       func(context.Context) error { return nil },
	}
}

// Shutdown flushes pending spans and releases the exporter.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	return tp.shutdown(ctx)
}

// TracerProviderFromConfigLine initializes a new TracerProvider based on the
// configuration specified through input line.
//
// Supported format is: otel[=<endpoint>:<port>,<other opts>]
// Where endpoint and port default to: 127.0.0.1:4317
// And other opts accept:
//   - proto: http or grpc (default).
//   - header.<header_name>
//
// Example: otel=http://127.0.0.1:4318/v1/traces,header.Authorization=token
func TracerProviderFromConfigLine(ctx context.Context, line string) (*TracerProvider, error) {
	params, err := providerParamsFromConfigLine(line)
	if err != nil {
		return nil, err
	}

	return newTracerProvider(ctx, params)
}

func providerParamsFromConfigLine(line string) (providerParams, error) {
	params := defaultProviderParams()

	if line == "otel" {
		return params, nil
	}

	output, _, _ := strings.Cut(line, "=")
	if output != "otel" {
		return params, fmt.Errorf("%w %q", ErrInvalidTracesOutput, output)
	}

	tokens, err := strvals.Parse(line)
	if err != nil {
		return params, fmt.Errorf("error while parsing otel configuration %w", err)
	}

	for _, token := range tokens {
		switch key := token.Key; {
		case key == "otel":
			if err := params.parseURL(token.Value); err != nil {
				return params, fmt.Errorf("couldn't parse the otel URL: %w", err)
			}
		case key == "proto":
			if token.Value != "http" && token.Value != "grpc" {
				return params, fmt.Errorf("couldn't parse the otel proto: %w: %q", ErrInvalidProto, token.Value)
			}
			params.proto = token.Value
		case strings.HasPrefix(key, "header."):
			params.headers[strings.TrimPrefix(key, "header.")] = token.Value
		default:
			return params, fmt.Errorf("unknown otel config key %s", key)
		}
	}

	if params.proto == "grpc" && params.urlPath != "" {
		return params, ErrInvalidGRPCWithURLPath
	}

	return params, nil
}

// parseURL accepts either a bare host:port, which keeps the current protocol,
// or a full http(s) URL, which switches the exporter to http.
func (p *providerParams) parseURL(s string) error {
	if !strings.Contains(s, "://") {
		p.endpoint = s
		return nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrInvalidURLScheme, u.Scheme)
	}

	p.proto = "http"
	p.endpoint = u.Host
	p.urlPath = u.Path
	p.insecure = u.Scheme == "http"

	return nil
}
