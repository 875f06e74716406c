package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-insights-go/internal/apperr"
	"lecture-insights-go/internal/config"
)

func newTestClient(url string) *Client {
	log, _ := test.NewNullLogger()
	return NewClient(config.GenerationConfig{
		URL:    url,
		Model:  "meta/llama-4-maverick-17b-128e-instruct",
		APIKey: "nvapi-secret-key",
	}, logrus.NewEntry(log))
}

func TestGenerateSendsChatRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer nvapi-secret-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "meta/llama-4-maverick-17b-128e-instruct", req.Model)
		assert.Equal(t, 0.2, req.Temperature)
		assert.Equal(t, 200, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "score this", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  {\"score\": 70}\n"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Generate(context.Background(), "score this", ScoringParams)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 70}`, out)
}

func TestGenerateFailuresAreTransient(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "upstream exploded", http.StatusBadGateway)
			},
			status: http.StatusBadGateway,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "slow down", http.StatusTooManyRequests)
			},
			status: http.StatusTooManyRequests,
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv.URL).Generate(context.Background(), "p", AnalysisParams)

			var transient *apperr.TransientError
			require.ErrorAs(t, err, &transient)
			assert.Equal(t, Dependency, transient.Dependency)
			assert.Equal(t, tt.status, transient.StatusCode)
			assert.True(t, apperr.IsRetryable(err))
		})
	}
}

func TestMockSwitchesOnCallKind(t *testing.T) {
	ctx := context.Background()
	m := Mock{}

	analysis, err := m.Generate(ctx, "p", AnalysisParams)
	require.NoError(t, err)
	assert.True(t, strings.Contains(analysis, "questions"))

	raw, err := m.Generate(ctx, "p", ScoringParams)
	require.NoError(t, err)
	score, err := ParseScore(raw)
	require.NoError(t, err)
	assert.Equal(t, 72, score.Score)

	raw, err = m.Generate(ctx, "p", MetricsParams)
	require.NoError(t, err)
	_, err = ParseExtendedMetrics(raw)
	assert.NoError(t, err)

	over := Mock{Overrides: map[string]string{"scoring": `{"score": 70, "reasoning": "fixed"}`}}
	raw, _ = over.Generate(ctx, "p", ScoringParams)
	assert.Contains(t, raw, "70")
}

func TestPromptsEmbedInputs(t *testing.T) {
	p := BuildAnalysisPrompt("hello class", "")
	assert.Contains(t, p, "hello class")
	assert.NotContains(t, p, "SYLLABUS")

	p = BuildAnalysisPrompt("hello class", "Unit 1: Photosynthesis")
	assert.Contains(t, p, "Unit 1: Photosynthesis")

	long := strings.Repeat("x", 5000)
	p = BuildScorePrompt("the analysis", long, "Unit 1")
	assert.Contains(t, p, "the analysis")
	assert.Contains(t, p, "30-50% student voice")
	assert.NotContains(t, p, strings.Repeat("x", 3001))

	assert.Contains(t, BuildMetricsPrompt("hello class"), "hinglish_fluency")
}
