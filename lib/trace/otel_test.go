package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderParamsFromConfigLine(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		line   string
		expErr error
		exp    providerParams
	}{
		{
			name: "default",
			line: "otel",
			exp:  defaultProviderParams(),
		},
		{
			name: "grpc endpoint",
			line: "otel=collector:4317,proto=grpc",
			exp: providerParams{
				proto: "grpc", endpoint: "collector:4317", insecure: true, headers: map[string]string{},
			},
		},
		{
			name: "http url with header",
			line: "otel=https://collector:4318/v1/traces,header.Authorization=token",
			exp: providerParams{
				proto:    "http",
				endpoint: "collector:4318",
				urlPath:  "/v1/traces",
				headers:  map[string]string{"Authorization": "token"},
			},
		},
		{
			name:   "invalid output",
			line:   "jaeger=localhost",
			expErr: ErrInvalidTracesOutput,
		},
		{
			name:   "invalid proto",
			line:   "otel,proto=udp",
			expErr: ErrInvalidProto,
		},
		{
			name:   "invalid scheme",
			line:   "otel=ftp://collector",
			expErr: ErrInvalidURLScheme,
		},
		{
			name:   "grpc with path",
			line:   "otel=http://collector:4317/v1/traces,proto=grpc",
			expErr: ErrInvalidGRPCWithURLPath,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			params, err := providerParamsFromConfigLine(tc.line)
			if tc.expErr != nil {
				require.ErrorIs(t, err, tc.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.exp, params)
		})
	}
}

func TestProviderParamsUnknownKey(t *testing.T) {
	t.Parallel()

	_, err := providerParamsFromConfigLine("otel,sampler=always")
	assert.EqualError(t, err, "unknown otel config key sampler")
}
