//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"cobranzas/internal/infra"
	"cobranzas/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func redisDePrueba(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	c, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	url, err := c.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_ProcessesEnqueuedJob(t *testing.T) {
	rdb := redisDePrueba(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recibido := make(chan EmailJobPayload, 1)
	pool := NewPool(rdb, metrics.New(prometheus.NewRegistry()))
	pool.Handle(JobEmail, func(_ context.Context, raw json.RawMessage) error {
		var p EmailJobPayload
		assert.NoError(t, json.Unmarshal(raw, &p))
		recibido <- p
		return nil
	})
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(ctx, EmailJobPayload{ToEmail: "ana@cobranzas.test"}))

	select {
	case p := <-recibido:
		assert.Equal(t, "ana@cobranzas.test", p.ToEmail)
	case <-time.After(10 * time.Second):
		t.Fatal("job not processed")
	}
	cancel()
	pool.Wait()
}

func TestPool_FailingJobEndsInDLQ(t *testing.T) {
	rdb := redisDePrueba(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var llamadas atomic.Int32
	pool := NewPool(rdb, nil)
	pool.Handle(JobEmail, func(context.Context, json.RawMessage) error {
		llamadas.Add(1)
		return errors.New("smtp caido")
	})
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).EnqueueEmail(ctx, EmailJobPayload{ToEmail: "ana@cobranzas.test"}))

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueNotificaciones)
		return err == nil && n == 1
	}, 20*time.Second, 100*time.Millisecond)

	entries, err := DLQEntries(ctx, rdb, QueueNotificaciones, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, JobEmail, entries[0].JobType)
	assert.Equal(t, MaxIntentos, entries[0].Attempts)
	assert.Equal(t, "smtp caido", entries[0].Reason)
	assert.EqualValues(t, MaxIntentos, llamadas.Load())

	cancel()
	pool.Wait()
}
