package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/irr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const portfolioBody = `{
	"portfolio": {
		"start": "2020-01-15",
		"initial": {"currency": "EUR", "amount": "100000"},
		"unitPrice": {"currency": "EUR", "amount": "1000"},
		"successRate": 80,
		"outcomePerUnit": {"currency": "EUR", "amount": "2000"},
		"topLineFee": 5,
		"managementFee": 40,
		"investorShare": 42.5,
		"horizon": 5
	}
}`

func unmarshalResponse[T any]() func([]byte) (any, error) {
	return func(data []byte) (any, error) {
		var v T
		err := json.Unmarshal(data, &v)
		return v, err
	}
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	router := ConfigureRouter(logger, Config{Addr: ":8080", ShutdownTimeout: time.Second, MaxBodyBytes: 4096})
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	tests := []struct {
		name           string
		path           string
		body           string
		expectedStatus int
		check          func(t *testing.T, v any)
		parseResponse  func([]byte) (any, error)
	}{
		{
			name:           "Rate",
			path:           "/api/v1/rate",
			body:           `{"initial": 100, "outcome": 150, "horizon": 2}`,
			expectedStatus: http.StatusOK,
			parseResponse:  unmarshalResponse[irr.Calculation](),
			check: func(t *testing.T, v any) {
				c := v.(irr.Calculation)
				assert.Equal(t, irr.RateMode, c.Scenario.Mode)
				assert.InDelta(t, 22.4745, float64(c.Metrics.Rate), 1e-3)
				assert.Len(t, c.Growth, 25)
			},
		},
		{
			name:           "Future",
			path:           "/api/v1/future",
			body:           `{"initial": {"currency": "EUR", "amount": "100"}, "rate": 15, "horizon": 3}`,
			expectedStatus: http.StatusOK,
			parseResponse:  unmarshalResponse[irr.Calculation](),
			check: func(t *testing.T, v any) {
				c := v.(irr.Calculation)
				got, _ := c.Metrics.Terminal.Decimal().Float64()
				assert.InDelta(t, 152.0875, got, 1e-3)
				assert.Equal(t, "EUR", c.Metrics.Terminal.Currency())
			},
		},
		{
			name:           "Present",
			path:           "/api/v1/present",
			body:           `{"outcome": 200, "rate": 10, "horizon": 5}`,
			expectedStatus: http.StatusOK,
			parseResponse:  unmarshalResponse[irr.Calculation](),
			check: func(t *testing.T, v any) {
				c := v.(irr.Calculation)
				got, _ := c.Metrics.Invested.Decimal().Float64()
				assert.InDelta(t, 124.1843, got, 1e-3)
			},
		},
		{
			name:           "Portfolio",
			path:           "/api/v1/portfolio",
			body:           portfolioBody,
			expectedStatus: http.StatusOK,
			parseResponse:  unmarshalResponse[irr.Calculation](),
			check: func(t *testing.T, v any) {
				c := v.(irr.Calculation)
				require.NotNil(t, c.Waterfall)
				assert.True(t, c.Waterfall.Net.Equal(irr.M(38760, "EUR")), "net = %v", c.Waterfall.Net)
				assert.Len(t, c.Growth, 61)
			},
		},
		{
			name:           "Calc",
			path:           "/api/v1/calc",
			body:           `{"mode": "blended", "start": "2020-01-15", "initial": 100, "outcome": 150, "horizon": 2}`,
			expectedStatus: http.StatusOK,
			parseResponse:  unmarshalResponse[irr.Calculation](),
			check: func(t *testing.T, v any) {
				c := v.(irr.Calculation)
				assert.Equal(t, irr.BlendedMode, c.Scenario.Mode)
				assert.InDelta(t, 22.4745, float64(c.Metrics.Rate), 1e-3)
			},
		},
		{
			name: "Blended_BatchError",
			path: "/api/v1/blended",
			body: `{"start": "2020-01-15", "initial": 100, "outcome": 150, "horizon": 2, "followOns": [
				{"amount": 10, "timing": {"after": 1, "unit": "month"}},
				{"amount": 10, "timing": {"after": 3, "unit": "year"}}
			]}`,
			expectedStatus: http.StatusUnprocessableEntity,
			parseResponse:  unmarshalResponse[ErrorResponse](),
			check: func(t *testing.T, v any) {
				e := v.(ErrorResponse)
				assert.Equal(t, 2, e.Batch)
				assert.Equal(t, "timing", e.Field)
				assert.Contains(t, e.Error, "unresolvable timing")
			},
		},
		{
			name:           "Rate_NonPositiveHorizon",
			path:           "/api/v1/rate",
			body:           `{"initial": 100, "outcome": 150}`,
			expectedStatus: http.StatusUnprocessableEntity,
			parseResponse:  unmarshalResponse[ErrorResponse](),
			check: func(t *testing.T, v any) {
				e := v.(ErrorResponse)
				assert.Equal(t, 0, e.Batch)
				assert.Equal(t, "years", e.Field)
			},
		},
		{
			name:           "Portfolio_Missing",
			path:           "/api/v1/portfolio",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			parseResponse:  unmarshalResponse[ErrorResponse](),
		},
		{
			name:           "InvalidJSON",
			path:           "/api/v1/rate",
			body:           `{"initial": `,
			expectedStatus: http.StatusBadRequest,
			parseResponse:  unmarshalResponse[ErrorResponse](),
			check: func(t *testing.T, v any) {
				assert.Contains(t, v.(ErrorResponse).Error, "invalid scenario")
			},
		},
		{
			name:           "UnknownField",
			path:           "/api/v1/rate",
			body:           `{"initial": 100, "outcome": 150, "horizon": 2, "fees": 3}`,
			expectedStatus: http.StatusBadRequest,
			parseResponse:  unmarshalResponse[ErrorResponse](),
		},
		{
			name:           "UnknownMode",
			path:           "/api/v1/sideways",
			body:           `{}`,
			expectedStatus: http.StatusNotFound,
			parseResponse:  unmarshalResponse[ErrorResponse](),
		},
		{
			name:           "TooLarge",
			path:           "/api/v1/rate",
			body:           `{"initial": 100, "outcome": 150, "horizon": 2` + strings.Repeat(" ", 5000) + `}`,
			expectedStatus: http.StatusRequestEntityTooLarge,
			parseResponse:  unmarshalResponse[ErrorResponse](),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(testServer.URL+tt.path, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			got, err := tt.parseResponse(body)
			require.NoError(t, err, "body: %s", body)
			if tt.check != nil {
				tt.check(t, got)
			}
		})
	}
}

func TestWebAPI_Health(t *testing.T) {
	router := ConfigureRouter(zerolog.Nop(), Config{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestWebAPI_Start(t *testing.T) {
	api := NewWebAPI(zerolog.Nop(), Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
