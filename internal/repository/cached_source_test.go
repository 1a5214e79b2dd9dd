// internal/repository/cached_source_test.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	appetites []models.UnderwriterAppetite
	err       error
	calls     int
}

func (s *stubSource) ListByProduct(_ context.Context, _ string) ([]models.UnderwriterAppetite, error) {
	s.calls++
	return s.appetites, s.err
}

func sampleAppetites() []models.UnderwriterAppetite {
	return []models.UnderwriterAppetite{
		{UnderwriterID: "uw-1", UnderwriterName: "Harbour Re", Jurisdictions: models.StringList{"UK"}},
	}
}

func TestCachedAppetiteSource_MissThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	next := &stubSource{appetites: sampleAppetites()}

	src := NewCachedAppetiteSource(next, rdb, time.Minute, logger.NewTestLogger(t))

	first, err := src.ListByProduct(context.Background(), " Cyber ")
	require.NoError(t, err)
	assert.Equal(t, "uw-1", first[0].UnderwriterID)
	assert.True(t, mr.Exists("appetites:product:cyber"))
	assert.Equal(t, time.Minute, mr.TTL("appetites:product:cyber"))

	second, err := src.ListByProduct(context.Background(), "CYBER")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)

	require.NoError(t, src.Invalidate(context.Background(), "cyber"))
	assert.False(t, mr.Exists("appetites:product:cyber"))
}

func TestCachedAppetiteSource_RedisDown(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	next := &stubSource{appetites: sampleAppetites()}
	data, _ := json.Marshal(next.appetites)

	redisMock.ExpectGet("appetites:product:cyber").SetErr(errors.New("connection refused"))
	redisMock.ExpectSet("appetites:product:cyber", data, 5*time.Minute).SetErr(errors.New("connection refused"))

	src := NewCachedAppetiteSource(next, rdb, 5*time.Minute, logger.NewTestLogger(t))
	appetites, err := src.ListByProduct(context.Background(), "Cyber")

	require.NoError(t, err)
	assert.Len(t, appetites, 1)
	assert.Equal(t, 1, next.calls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCachedAppetiteSource_CorruptEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, mr.Set("appetites:product:cyber", "{not json"))
	next := &stubSource{appetites: sampleAppetites()}

	appetites, err := NewCachedAppetiteSource(next, rdb, time.Minute, logger.NewTestLogger(t)).ListByProduct(context.Background(), "cyber")

	require.NoError(t, err)
	assert.Len(t, appetites, 1)
	assert.Equal(t, 1, next.calls)
}

func TestCachedAppetiteSource_SourceError(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet("appetites:product:cyber").RedisNil()
	next := &stubSource{err: ErrAppetiteQueryFailed}

	_, err := NewCachedAppetiteSource(next, rdb, time.Minute, logger.NewTestLogger(t)).ListByProduct(context.Background(), "cyber")

	assert.ErrorIs(t, err, ErrAppetiteQueryFailed)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestName(t *testing.T) {
	pg := NewPostgresAppetiteSource(nil)
	assert.Equal(t, "postgres", Name(pg))
	assert.Equal(t, "elasticsearch", Name(NewSearchAppetiteSource(nil, "i", 1)))
	assert.Equal(t, "postgres", Name(NewCachedAppetiteSource(pg, nil, time.Second, logger.NewNoOpLogger())))
	assert.Equal(t, "custom", Name(&stubSource{}))
}
