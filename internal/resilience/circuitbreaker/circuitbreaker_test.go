package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProvider = errors.New("metrics provider unavailable")

func testConfig() Config {
	return Config{
		Name:             "test-circuit",
		MaxRequests:      3,
		Interval:         10 * time.Second,
		Timeout:          time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func TestNew_StartsClosed(t *testing.T) {
	cb := New(testConfig())

	require.NotNil(t, cb)
	assert.Equal(t, "test-circuit", cb.Name())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestExecute_PassesThroughResultAndError(t *testing.T) {
	cb := New(testConfig())

	result, err := cb.Execute(func() (interface{}, error) {
		return "enriched", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "enriched", result)

	result, err = cb.Execute(func() (interface{}, error) {
		return nil, errProvider
	})
	assert.ErrorIs(t, err, errProvider)
	assert.Nil(t, result)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestExecute_TripsAtFailureRatio(t *testing.T) {
	cb := New(testConfig())

	// Four failures and one success stay under MinRequests+ratio; the
	// sixth call (a failure) pushes the ratio past 60% and trips.
	for i := 0; i < 4; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, errProvider })
		assert.ErrorIs(t, err, errProvider)
	}
	_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	require.NoError(t, err)

	_, err = cb.Execute(func() (interface{}, error) { return nil, errProvider })
	assert.ErrorIs(t, err, errProvider)

	assert.True(t, cb.IsOpen())

	called := false
	_, err = cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called, "open breaker must not invoke the call")
}

func TestExecute_StaysClosedBelowMinRequests(t *testing.T) {
	cfg := testConfig()
	cfg.FailureThreshold = 0.5
	cfg.MinRequests = 10
	cb := New(cfg)

	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errProvider })
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestExecute_RecoversThroughHalfOpen(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequests = 2
	cfg.Timeout = 100 * time.Millisecond
	cb := New(cfg)

	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (interface{}, error) { return nil, errProvider })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	time.Sleep(150 * time.Millisecond)

	_, err := cb.Execute(func() (interface{}, error) { return "recovered", nil })
	require.NoError(t, err)
	assert.NotEqual(t, gobreaker.StateOpen, cb.State())
}

func TestConfigProfiles(t *testing.T) {
	def := DefaultConfig("articles")
	assert.Equal(t, "articles", def.Name)
	assert.EqualValues(t, 3, def.MaxRequests)
	assert.Equal(t, 30*time.Second, def.Interval)
	assert.Equal(t, 60*time.Second, def.Timeout)
	assert.Equal(t, 0.6, def.FailureThreshold)
	assert.EqualValues(t, 5, def.MinRequests)

	assert.Equal(t, "claude-api", ClaudeAPIConfig().Name)
	assert.Equal(t, "openai-api", OpenAIAPIConfig().Name)
	assert.Equal(t, "cms-publish", PublisherConfig().Name)

	seo := SEODataAPIConfig()
	assert.Equal(t, "seodata-api", seo.Name)
	assert.EqualValues(t, 5, seo.MaxRequests)
	assert.Equal(t, 0.7, seo.FailureThreshold)

	serp := SerpFetchConfig()
	assert.Equal(t, "serp-fetch", serp.Name)
	assert.Equal(t, 0.8, serp.FailureThreshold)
	assert.Equal(t, 120*time.Second, serp.Timeout)
}
