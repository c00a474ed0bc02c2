package server

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/logging"
	"github.com/dmitrijs2005/checkpay/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = fmt.Sprintf("file:app_%d?mode=memory&cache=shared", time.Now().UnixNano())
	cfg.EndpointAddrHTTP = "127.0.0.1:0"
	cfg.EndpointAddrGRPC = "127.0.0.1:0"
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func names(t *testing.T, app *App) []string {
	t.Helper()
	ns, closers, err := app.buildNotifiers(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { closeAll(context.Background(), app.logger, closers) })

	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Name())
	}
	return out
}

func TestBuildNotifiers_FallsBackToLog(t *testing.T) {
	app := NewApp(testConfig(t), logging.NewNop())
	assert.Equal(t, []string{"log"}, names(t, app))
}

func TestBuildNotifiers_ConfiguredChannels(t *testing.T) {
	cfg := testConfig(t)
	cfg.SMTPHost = "smtp.example.com"
	cfg.NotifyFrom = "noreply@example.com"
	cfg.NotifyTo = []string{"ops@example.com"}
	cfg.KafkaBrokers = []string{"127.0.0.1:9092"}

	app := NewApp(cfg, logging.NewNop())
	assert.Equal(t, []string{"smtp", "kafka"}, names(t, app))
}

func TestBuildNotifiers_SMTPNeedsRecipients(t *testing.T) {
	cfg := testConfig(t)
	cfg.SMTPHost = "smtp.example.com"

	app := NewApp(cfg, logging.NewNop())
	assert.Equal(t, []string{"log"}, names(t, app))
}

func TestBuildNotifiers_AMQPDialError(t *testing.T) {
	cfg := testConfig(t)
	cfg.AMQPURL = "not-a-url"

	_, _, err := NewApp(cfg, logging.NewNop()).buildNotifiers(context.Background())
	require.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app := NewApp(testConfig(t), logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("app exited too early: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestRun_BadDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDSN = "mysql://nope"
	require.Error(t, NewApp(cfg, logging.NewNop()).Run(context.Background()))
}
