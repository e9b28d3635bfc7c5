package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"lull/internal/agent"
	"lull/internal/channel"
	"lull/internal/config"
	"lull/internal/event"
	"lull/internal/filter"
	"lull/internal/llm"
	"lull/internal/logger"
	"lull/internal/memory"
	"lull/pkg/health"
	"lull/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg    *config.Config
	logger logger.Logger

	redis     *redis.Client
	store     memory.Store
	queue     *event.Queue
	loop      *event.Loop
	scheduler *event.Scheduler
	discord   *channel.DiscordChannel
	server    *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("lull")
	}
	return &App{
		cfg:    cfg,
		logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	a.initStore(ctx)

	if err := a.initChannel(); err != nil {
		return fmt.Errorf("failed to initialize chat channel: %w", err)
	}

	if err := a.initPipeline(); err != nil {
		return fmt.Errorf("failed to initialize event pipeline: %w", err)
	}

	metrics.RegisterEventMetrics()
	metrics.RegisterAgentMetrics()
	metrics.RegisterLLMMetrics()
	metrics.RegisterCircuitBreakerMetrics()

	a.initHTTPServer()
	return nil
}

// initStore connects Redis; when it is unreachable the agent falls back to
// the in-memory store so it can keep operating without durable memory.
func (a *App) initStore(ctx context.Context) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", a.cfg.Redis.Host, a.cfg.Redis.Port),
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		a.logger.WarnwCtx(ctx, "Redis unreachable, falling back to in-memory store",
			"addr", rdb.Options().Addr,
			"error", err,
		)
		_ = rdb.Close()
		a.store = memory.NewInMemoryStore(a.cfg.Memory.TranscriptLimit)
		return
	}

	a.redis = rdb
	a.store = memory.NewRedisStore(rdb, a.cfg.Memory.TranscriptLimit)
	a.logger.InfowCtx(ctx, "Redis memory store connected", "addr", rdb.Options().Addr)
}

func (a *App) initChannel() error {
	discord, err := channel.NewDiscordChannel(a.cfg.Discord, a.cfg.Delivery, a.logger)
	if err != nil {
		return err
	}
	a.discord = discord
	return nil
}

func (a *App) initPipeline() error {
	inboundFilter, err := filter.New(a.cfg.Discord.AllowFrom, a.cfg.Filter.Expression)
	if err != nil {
		return fmt.Errorf("failed to build inbound filter: %w", err)
	}

	client := llm.NewClient(a.cfg.LLM, a.cfg.Agent.Name, a.logger)
	builder := agent.NewContextBuilder(a.store, a.cfg.Memory.TranscriptLimit)
	retention := time.Duration(a.cfg.Memory.RetentionHours) * time.Hour

	a.queue = event.NewQueue(a.logger)

	dispatcher := event.NewDispatcher(a.logger)
	dispatcher.Register(event.TypeJudge, agent.NewJudgeHandler(a.queue, builder, client, a.logger))
	dispatcher.Register(event.TypeRespond, agent.NewRespondHandler(builder, client, a.discord, a.store, a.cfg.Agent.Name, a.logger))
	dispatcher.Register(event.TypeSummarize, agent.NewSummarizeHandler(a.store, builder, client, retention, a.logger))
	dispatcher.Register(event.TypeChannelSync, agent.NewChannelSyncHandler(a.discord, a.store, retention, a.logger))

	a.loop = event.NewLoop(a.queue, dispatcher, a.logger)

	intake := agent.NewIntake(a.queue, a.store, inboundFilter, a.cfg.Agent, a.logger)
	a.discord.OnInbound(intake.HandleInbound)

	return a.initScheduler()
}

func (a *App) initScheduler() error {
	a.scheduler = event.NewScheduler(a.queue, a.logger)

	summarize := event.Task{
		Name: "summarize",
		Make: event.NewSummarize,
	}
	if a.cfg.Scheduler.SummaryCron != "" {
		summarize.Cron = a.cfg.Scheduler.SummaryCron
	} else {
		summarize.Interval = time.Duration(a.cfg.Scheduler.SummaryIntervalSeconds) * time.Second
	}
	if err := a.scheduler.Add(summarize); err != nil {
		return err
	}

	return a.scheduler.Add(event.Task{
		Name:     "channel_sync",
		Interval: time.Duration(a.cfg.Scheduler.ChannelSyncIntervalSeconds) * time.Second,
		Make:     event.NewChannelSync,
	})
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}
	healthRegistry.Register(health.NewFuncChecker("discord", a.discord.Healthy))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: mux,
	}
}

func (a *App) Run(ctx context.Context) error {
	if err := a.discord.Start(ctx); err != nil {
		return fmt.Errorf("failed to start chat channel: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.loop.Run(gCtx)
	})

	g.Go(func() error {
		return a.scheduler.Run(gCtx)
	})

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "HTTP server starting", "port", a.cfg.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.shutdown()
		return nil
	})

	return g.Wait()
}

// shutdown stops intake before draining: the gateway closes first so no new
// events arrive, then the queue closes, which discards pending timers and
// lets the loop exit once the in-flight handler finishes.
func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Infow("Shutting down")

	if err := a.discord.Stop(shutdownCtx); err != nil {
		a.logger.Warnw("chat channel shutdown error", "error", err)
	}

	a.queue.Close()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warnw("HTTP server shutdown error", "error", err)
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warnw("redis shutdown error", "error", err)
		}
	}
}
