package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(r http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenBucketBurst(t *testing.T) {
	// Near-zero refill rate so elapsed time between calls cannot top up.
	tb := NewTokenBucket(0.0001, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow())
	}
	assert.False(t, tb.Allow())
}

func TestIPRateLimiterGroupsDoNotShareBuckets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/strict", IPRateLimiter(0.0001, 2), ok)
	r.GET("/wide", IPRateLimiter(0.0001, 40), ok)

	ip := "203.0.113.7:51000"

	// Drain the strict group's burst from one IP.
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, performRequest(r, "/strict", ip).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, performRequest(r, "/strict", ip).Code)

	// The same IP still has the wide group's full burst.
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, performRequest(r, "/wide", ip).Code)
	}

	// And a different IP is unaffected by the drained bucket.
	assert.Equal(t, http.StatusOK, performRequest(r, "/strict", "203.0.113.8:51000").Code)
}
