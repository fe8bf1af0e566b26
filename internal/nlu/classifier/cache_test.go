package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsense-voice/internal/common/logger"
)

func TestCaching_MissThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	backend := &recordingClassifier{result: Result{Label: LabelAdd.String(), Score: 0.8}}
	c := NewCaching(backend, rdb, time.Minute, logger.NewTestLogger(t))

	first, err := c.Classify(context.Background(), "add rice", LabelTexts())
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), "add rice", LabelTexts())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.calls)

	key := CacheKey(DefaultCachePrefix, "add rice", LabelTexts())
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	_, err = c.Classify(context.Background(), "add rice", LabelTexts())
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
}

func TestCaching_KeyDependsOnLabels(t *testing.T) {
	a := CacheKey(DefaultCachePrefix, "rice", []string{"x", "y"})
	b := CacheKey(DefaultCachePrefix, "rice", []string{"x", "z"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, CacheKey(DefaultCachePrefix, "rice", []string{"x", "y"}))
}

func TestCaching_BackendErrorNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := CacheKey(DefaultCachePrefix, "rice", LabelTexts())

	mock.ExpectGet(key).RedisNil()

	c := NewCaching(Failing(ErrUnavailable), rdb, time.Minute, logger.NewTestLogger(t))
	_, err := c.Classify(context.Background(), "rice", LabelTexts())

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaching_RedisFailuresAreBypassed(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := CacheKey(DefaultCachePrefix, "rice", LabelTexts())
	want := Result{Label: LabelSearch.String(), Score: 0.5}
	data, _ := json.Marshal(want)

	mock.ExpectGet(key).SetErr(errors.New("connection refused"))
	mock.ExpectSet(key, string(data), time.Minute).SetErr(errors.New("connection refused"))

	backend := &recordingClassifier{result: want}
	c := NewCaching(backend, rdb, time.Minute, logger.NewTestLogger(t))

	res, err := c.Classify(context.Background(), "rice", LabelTexts())
	require.NoError(t, err)
	assert.Equal(t, want, res)
	assert.Equal(t, 1, backend.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaching_CorruptEntryIsRefreshed(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := CacheKey(DefaultCachePrefix, "rice", LabelTexts())
	want := Result{Label: LabelAdd.String(), Score: 0.7}
	data, _ := json.Marshal(want)

	mock.ExpectGet(key).SetVal("not json")
	mock.ExpectSet(key, string(data), DefaultCacheTTL).SetVal("OK")

	c := NewCaching(&recordingClassifier{result: want}, rdb, 0, logger.NewTestLogger(t))
	res, err := c.Classify(context.Background(), "rice", LabelTexts())

	require.NoError(t, err)
	assert.Equal(t, want, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}
