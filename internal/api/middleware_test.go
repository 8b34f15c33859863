package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{
			name:   "success response",
			status: "200",
			input:  map[string]string{"key": "value"},
		},
		{
			name:   "no content response",
			status: "204",
			input:  nil,
		},
		{
			name:   "bad request error",
			status: "400",
			input:  errors.New("invalid input"),
		},
		{
			name:   "not found error",
			status: "404",
			input:  errors.New("resource not found"),
		},
		{
			name:   "validation error with details",
			status: "400",
			input: &APIError{
				Code:    "VALIDATION",
				Message: "validation failed",
				Details: map[string]string{"durationSec": "must be greater than 0"},
			},
		},
		{
			name:   "internal server error",
			status: "500",
			input:  errors.New("internal error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			err = json.Unmarshal(jsonBytes, &envelope)
			require.NoError(t, err)

			require.Contains(t, envelope, "v", "Envelope must contain version field 'v'")
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"name": "Night of the Living Dead"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_ErrorResponse(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
}

func TestEnvelopeTransformer_ErrorWithCode(t *testing.T) {
	apiErr := &APIError{
		Code:    "NOT_FOUND",
		Message: "film not in current catalog",
	}

	result, err := EnvelopeTransformer(nil, "404", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.False(t, envelope.Success)
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Equal(t, "film not in current catalog", envelope.Message)
	assert.Nil(t, envelope.Details)
}

func TestEnvelopeTransformer_ErrorWithDetails(t *testing.T) {
	apiErr := &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"positionSec": "must be greater than or equal to 0"},
	}

	result, err := EnvelopeTransformer(nil, "400", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")

	assert.Equal(t, "VALIDATION", envelope.Code)
	assert.Equal(t, map[string]string{"positionSec": "must be greater than or equal to 0"}, envelope.Details)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "forwarded chain takes first hop",
			remoteAddr: "10.0.0.1:4242",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 70.41.3.18"},
			want:       "203.0.113.7",
		},
		{
			name:       "single forwarded address",
			remoteAddr: "10.0.0.1:4242",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "real ip header",
			remoteAddr: "10.0.0.1:4242",
			headers:    map[string]string{"X-Real-IP": "198.51.100.2"},
			want:       "198.51.100.2",
		},
		{
			name:       "forwarded wins over real ip",
			remoteAddr: "10.0.0.1:4242",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.7",
				"X-Real-IP":       "198.51.100.2",
			},
			want: "203.0.113.7",
		},
		{
			name:       "remote addr with port",
			remoteAddr: "192.0.2.44:9911",
			want:       "192.0.2.44",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.44",
			want:       "192.0.2.44",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPut, "/api/v1/films/x/progress", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestRateLimit_MutatingRequestsLimited(t *testing.T) {
	ts := setupTestServer(t)

	var limited, passed int
	for range 40 {
		resp := ts.api.Put("/api/v1/films/some_film/progress", map[string]any{
			"positionSec": 1,
			"durationSec": 600,
		})
		if resp.Code == http.StatusTooManyRequests {
			limited++
		} else {
			passed++
		}
	}

	// The bucket holds the first burst, then refuses.
	assert.GreaterOrEqual(t, passed, writeBurst)
	assert.Positive(t, limited)
}

func TestRateLimit_ReadsNeverLimited(t *testing.T) {
	ts := setupTestServer(t)

	// Exhaust the write bucket first.
	for range 30 {
		ts.api.Put("/api/v1/films/some_film/progress", map[string]any{
			"positionSec": 1,
			"durationSec": 600,
		})
	}

	for range 10 {
		resp := ts.api.Get("/health")
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestRateLimit_ResponseShape(t *testing.T) {
	ts := setupTestServer(t)

	var body []byte
	for range 40 {
		resp := ts.api.Put("/api/v1/films/some_film/progress", map[string]any{
			"positionSec": 1,
			"durationSec": 600,
		})
		if resp.Code == http.StatusTooManyRequests {
			body = resp.Body.Bytes()
			break
		}
	}
	require.NotEmpty(t, body, "no request was rate limited")

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(body, &envelope))
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "too many requests, slow down", envelope["error"])
}
