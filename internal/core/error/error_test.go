package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusForbidden, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			err := FromStatus(tc.status, "")
			assert.Equal(t, tc.want, err.Kind)
			assert.Equal(t, tc.status, err.Status)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))

	raw := errors.New("dial tcp: connection refused")
	got := Classify(raw)
	assert.Equal(t, KindNetwork, got.Kind)
	assert.ErrorIs(t, got, raw)

	classified := FromStatus(http.StatusNotFound, "Itinerary not found")
	wrapped := fmt.Errorf("fetch: %w", classified)
	assert.Same(t, classified, Classify(wrapped))

	assert.Equal(t, KindNetwork, Classify(context.Canceled).Kind)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.Equal(t, KindUnknown, KindOf(raw))
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := FromStatus(http.StatusUnauthorized, "Could not validate credentials").WithOp("auth.me")
	assert.ErrorIs(t, err, &Error{Kind: KindAuth})
	assert.NotErrorIs(t, err, &Error{Kind: KindServer})
	assert.Equal(t, "auth.me: Could not validate credentials", err.Error())
}

func TestDetailMessage(t *testing.T) {
	assert.Equal(t, "Itinerary not found", DetailMessage([]byte(`{"detail":"Itinerary not found"}`)))
	assert.Equal(t, "origin: field required; passengers: value is not a valid integer",
		DetailMessage([]byte(`{"detail":[{"loc":["body","origin"],"msg":"field required"},{"loc":["body","passengers"],"msg":"value is not a valid integer"}]}`)))
	assert.Equal(t, "boom", DetailMessage([]byte(`{"message":"boom"}`)))
	assert.Empty(t, DetailMessage([]byte(`<html>bad gateway</html>`)))
}

func TestWrapRedis(t *testing.T) {
	require.NoError(t, WrapRedis(nil))
	assert.True(t, IsKind(WrapRedis(redis.Nil), KindNotFound))
	assert.True(t, IsKind(WrapRedis(errors.New("i/o timeout")), KindServer))
}
