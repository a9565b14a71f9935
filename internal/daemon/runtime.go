// Package daemon wires the ten PoHW components into the long-running
// pohwd process (C9): one OS thread pinned to input capture, a
// cooperative tick loop for everything else, and the IPC/telemetry
// sockets that let short-lived tools talk to it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"pohwd/internal/battery"
	"pohwd/internal/config"
	"pohwd/internal/entropy"
	"pohwd/internal/identity"
	"pohwd/internal/ipc"
	"pohwd/internal/ledger"
	"pohwd/internal/logging"
	"pohwd/internal/manifest"
	"pohwd/internal/metrics"
	"pohwd/internal/ring"
	"pohwd/internal/sensor"
	"pohwd/internal/telemetry"
)

// tickSnapshot is the last analysis tick's output, read back by the
// metrics/status IPC ops and the MCP introspection tools.
type tickSnapshot struct {
	metrics manifest.Metrics
	cns     uint8
}

// Runtime owns every long-lived component of one pohwd process.
type Runtime struct {
	cfg    config.Config
	log    *slog.Logger
	warner *logging.RateLimitedWarner
	crash  *logging.CrashHandler
	audit  *logging.AuditLogger

	metrics *metrics.Registry
	ledger  *ledger.Ledger
	id      *identity.Identity

	ring      *ring.Buffer
	sensor    *sensor.Sensor
	engine    *entropy.Engine
	actor     *battery.Actor
	qualifier atomic.Pointer[telemetry.Qualifier]
	lastTick  atomic.Pointer[tickSnapshot]

	ipcServer       *ipc.Server
	telemetryServer *telemetry.Server
	mcp             *MCPServer

	state    *StateManager
	lockFile *os.File

	tp     *sdktrace.TracerProvider
	tracer trace.Tracer

	difficultyMinBits atomic.Uint32
	difficultyMaxBits atomic.Uint32
	maxPuzzle         atomic.Int64

	mu        sync.Mutex
	cfgPath   string
	repoDir   string
	startedAt time.Time
}

// New wires every component from cfg but starts nothing; call Run to
// start the sensor thread, tick loop, and sockets.
func New(cfg config.Config, cfgPath, repoDir string) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	log := logging.New(logging.Config{
		Level:          cfg.LogLevel,
		Format:         logging.Format(cfg.LogFormat),
		Component:      "pohwd",
		FilePath:       cfg.LogFilePath,
		MaxSize:        cfg.LogMaxSizeMB,
		MaxAge:         cfg.LogMaxAgeDays,
		MaxBackups:     cfg.LogMaxBackups,
		Compress:       cfg.LogCompress,
		AddSource:      cfg.LogAddSource,
		RedactPatterns: cfg.LogRedactPatterns,
	})
	warner := logging.NewRateLimitedWarner(log, time.Minute)
	crash := logging.NewCrashHandler(cfg.CrashDir, "pohwd", log)
	audit, err := logging.NewAuditLogger(cfg.AuditLogPath, cfg.LogMaxSizeMB, cfg.LogMaxAgeDays, cfg.LogMaxBackups, cfg.LogCompress, "pohwd", log)
	if err != nil {
		log.Warn("audit logger unavailable, falling back to operational log", "error", err)
		audit, _ = logging.NewAuditLogger("", 0, 0, 0, false, "pohwd", log)
	}

	id, sealed, err := identity.LoadWithTPM(cfg.SigningKeyPath, cfg.IdentityUseTPM)
	if err != nil {
		return nil, fmt.Errorf("daemon: load identity: %w", err)
	}
	if cfg.IdentityUseTPM && !sealed {
		log.Warn("identity_use_tpm set but no TPM available, falling back to plain seed file")
	}

	reg := metrics.NewRegistry()

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("daemon: open ledger: %w", err)
	}

	credits, _, err := battery.Load(cfg.BatteryPath, id.PublicKey())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("battery state unreadable or unsigned, starting from Empty", "error", err)
		credits = battery.Credits{}
	}
	actor := battery.NewActor(credits, cfg.MaxBattery, cfg.MinCNSThreshold, cfg.MinHWDelta, battery.DefaultMinCommitCost)

	engine, err := entropy.NewEngine(entropy.DefaultMinSamples, entropy.DefaultResampleHz)
	if err != nil {
		return nil, fmt.Errorf("daemon: new entropy engine: %w", err)
	}

	buf := ring.New(int(cfg.RingCapacity))
	backend := sensor.DefaultBackend()
	sen := sensor.New(backend, time.Now().UnixNano())

	tp, err := newTracerProvider(os.Stderr, "pohwd")
	if err != nil {
		return nil, fmt.Errorf("daemon: tracer provider: %w", err)
	}

	rt := &Runtime{
		cfg:     cfg,
		log:     log,
		warner:  warner,
		crash:   crash,
		audit:   audit,
		metrics: reg,
		ledger:  led,
		id:      id,
		ring:    buf,
		sensor:  sen,
		engine:  engine,
		actor:   actor,
		state:   NewStateManager(cfg.DataDir),
		tp:      tp,
		tracer:  Tracer(),
		cfgPath: cfgPath,
		repoDir: repoDir,
	}
	rt.qualifier.Store(telemetry.NewQualifier(cfg.ProductiveExtensions))
	rt.difficultyMinBits.Store(uint32(cfg.DifficultyMinBits))
	rt.difficultyMaxBits.Store(uint32(cfg.DifficultyMaxBits))
	rt.maxPuzzle.Store(int64(cfg.MaxPuzzleMs))

	rt.ipcServer = &ipc.Server{SocketPath: cfg.SocketPath, Handler: rt, Log: log}
	rt.telemetryServer = &telemetry.Server{
		SocketPath: cfg.TelemetryPath,
		Log:        log,
		Handle:     rt.handleTelemetryEvent,
	}
	if cfg.MCPEnabled {
		rt.mcp = newMCPServer(rt)
	}

	return rt, nil
}

func (rt *Runtime) handleTelemetryEvent(e telemetry.Event) {
	rt.qualifier.Load().Apply(e)
}

// Run acquires the singleton lock, starts every background loop, and
// blocks until ctx is cancelled, at which point it persists signed
// battery state and tears sockets down.
func (rt *Runtime) Run(ctx context.Context) error {
	lockFile, err := rt.state.AcquireSingleton()
	if err != nil {
		return err
	}
	rt.lockFile = lockFile
	rt.startedAt = time.Now()
	rt.audit.LogSessionStart("pohwd")
	// The battery actor runs on its own context, cancelled only after
	// shutdown has collected and persisted its final credits.
	actorCtx, stopActor := context.WithCancel(context.Background())
	defer stopActor()
	defer rt.shutdown()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := rt.state.WritePID(); err != nil {
		rt.log.Warn("write pid file failed", "error", err)
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	// runTask launches fn as a tracked goroutine wrapped in panic
	// recovery: a recovered panic degrades the battery (the task's
	// invariants can no longer be trusted) rather than crashing the
	// whole daemon, matching the containment policy every other
	// error path here already follows.
	runTask := func(name string, fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					rt.crash.HandlePanic(name, r)
					rt.actor.Panic()
				}
			}()
			fn()
		}()
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				rt.crash.HandlePanic("battery_actor", r)
				rt.actor.ForceDegradedUnsynchronized()
				rt.log.Error("battery actor recovered from panic, restarting degraded", "panic", r)
				rt.actor.Run(actorCtx)
			}
		}()
		rt.actor.Run(actorCtx)
	}()

	runTask("sensor", func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		push := func(t int64, x, y int32, buttonMask uint8) {
			rt.ring.Push(ring.Sample{T: t, X: x, Y: y, ButtonMask: buttonMask})
		}
		if err := rt.sensor.Run(ctx, push); err != nil && !errors.Is(err, context.Canceled) {
			rt.log.Error("sensor backend exited", "backend", rt.sensor.Name(), "error", err)
			sensor.NotifyUnavailable("PoHW sensor unavailable", err.Error())
			errCh <- err
		}
	})

	runTask("ipc_server", func() {
		if err := rt.ipcServer.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("daemon: ipc server: %w", err)
		}
	})

	runTask("telemetry_server", func() {
		if err := rt.telemetryServer.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("daemon: telemetry server: %w", err)
		}
	})

	runTask("tick_loop", func() {
		rt.tickLoop(ctx)
	})

	runTask("config_watch", func() {
		rt.watchConfig(ctx)
	})

	runTask("snapshot_loop", func() {
		rt.snapshotLoop(ctx)
	})

	if rt.mcp != nil {
		runTask("mcp_server", func() {
			if err := rt.mcp.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				rt.log.Warn("mcp server exited", "error", err)
			}
		})
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		rt.log.Error("daemon component failed, shutting down", "error", err)
		cancel()
	}
	wg.Wait()
	return nil
}

func (rt *Runtime) tickLoop(ctx context.Context) {
	interval := time.Duration(rt.cfg.TickMs) * time.Millisecond
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.tick(ctx, interval.Seconds())
		}
	}
}

func (rt *Runtime) tick(ctx context.Context, tickSeconds float64) {
	spanCtx, span := rt.tracer.Start(ctx, "entropy.tick")
	window := entropy.Snapshot(rt.ring, 0)
	m, cns, err := rt.engine.Tick(window)
	span.End()
	if err != nil {
		if !errors.Is(err, entropy.ErrDegenerate) {
			rt.warner.Warn("entropy_tick", "entropy tick failed", "error", err)
		}
		return
	}
	rt.metrics.TicksProcessed.Inc()
	rt.metrics.CNSScore.Set(float64(cns))
	rt.lastTick.Store(&tickSnapshot{
		metrics: manifest.Metrics{
			LDLJ:        m.LDLJ,
			SpecEntropy: m.SpectralEntropy,
			CurvEntropy: m.CurvatureEntropy,
			Throughput:  m.Throughput,
			NCD:         m.NCD,
			Burstiness:  m.Burstiness,
		},
		cns: cns,
	})

	mult := rt.qualifier.Load().Multiplier()
	effectiveCNS := cns
	if mult > 1.0 {
		boosted := float64(cns) * mult
		if boosted > 100 {
			boosted = 100
		}
		effectiveCNS = uint8(boosted)
	}

	_, chargeSpan := rt.tracer.Start(spanCtx, "battery.charge")
	result := rt.actor.Charge(battery.ChargeRequest{
		CNS:         effectiveCNS,
		HWEvents:    rt.sensor.Counter().Events(),
		NowNs:       time.Now().UnixNano(),
		TickSeconds: tickSeconds,
	})
	chargeSpan.SetAttributes(attribute.Bool("accepted", result.Accepted), attribute.String("state", result.State.String()))
	chargeSpan.End()

	if result.Accepted {
		rt.metrics.ChargesAccepted.Inc()
	} else {
		rt.metrics.ChargesRejected.WithLabelValues(result.Reason).Inc()
		if result.Reason == "causality_broken" {
			rt.warner.Warn("causality_broken", "causality broken, battery degraded")
		}
	}
	rt.metrics.BatteryBalance.Set(result.Balance)
}

// snapshotLoop periodically persists signed battery state so a crash
// between ticks loses at most one snapshot interval of balance.
func (rt *Runtime) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.persistBattery()
		}
	}
}

func (rt *Runtime) persistBattery() {
	snap := rt.actor.Status()
	err := battery.Persist(rt.cfg.BatteryPath, battery.Credits{
		Balance:       snap.Balance,
		LastHWCounter: snap.Credits.LastHWCounter,
		LastChargeNs:  snap.Credits.LastChargeNs,
	}, time.Now().UnixNano(), rt.id.Sign)
	if err != nil {
		rt.warner.Warn("battery_persist", "battery persist failed", "error", err)
		return
	}
	if err := rt.state.WriteState(RunState{
		PID:       os.Getpid(),
		StartedAt: rt.startedAt,
		State:     snap.State.String(),
		Balance:   snap.Balance,
	}); err != nil {
		rt.warner.Warn("state_write", "run-state write failed", "error", err)
	}
}

func (rt *Runtime) shutdown() {
	rt.audit.LogSessionEnd("context cancelled")
	if err := rt.audit.Close(); err != nil {
		rt.log.Warn("audit log close failed", "error", err)
	}
	credits := rt.actor.Shutdown()
	if err := battery.Persist(rt.cfg.BatteryPath, credits, time.Now().UnixNano(), rt.id.Sign); err != nil {
		rt.log.Error("final battery persist failed", "error", err)
	}
	if err := rt.engine.Close(); err != nil {
		rt.log.Warn("entropy engine close failed", "error", err)
	}
	if err := rt.ledger.Close(); err != nil {
		rt.log.Warn("ledger close failed", "error", err)
	}
	if rt.tp != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rt.tp.Shutdown(shutdownCtx); err != nil {
			rt.log.Warn("tracer provider shutdown failed", "error", err)
		}
	}
	rt.state.Cleanup()
	if rt.lockFile != nil {
		rt.lockFile.Close()
	}
}

// Status implements the read side shared by ipc.Handler and MCP.
func (rt *Runtime) Status() (state string, balance float64, cns uint8, err error) {
	snap := rt.actor.Status()
	if t := rt.lastTick.Load(); t != nil {
		cns = t.cns
	}
	return snap.State.String(), snap.Balance, cns, nil
}

// Metrics implements the ipc.Handler / MCP metrics surface.
func (rt *Runtime) Metrics() (manifest.Metrics, uint8, error) {
	t := rt.lastTick.Load()
	if t == nil {
		return manifest.Metrics{}, 0, nil
	}
	return t.metrics, t.cns, nil
}

// ReloadConfig re-reads the TOML config file and applies the subset of
// settings that are safe to change without restarting the actor:
// productive extensions, puzzle difficulty bounds, and the puzzle
// time limit. Other settings, log level included, take effect only
// after a restart.
func (rt *Runtime) ReloadConfig() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	cfg, err := config.Load(rt.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt.qualifier.Store(telemetry.NewQualifier(cfg.ProductiveExtensions))
	rt.difficultyMinBits.Store(uint32(cfg.DifficultyMinBits))
	rt.difficultyMaxBits.Store(uint32(cfg.DifficultyMaxBits))
	rt.maxPuzzle.Store(int64(cfg.MaxPuzzleMs))
	rt.cfg.ProductiveExtensions = cfg.ProductiveExtensions
	rt.log.Info("config reloaded", "path", rt.cfgPath)
	rt.audit.LogConfigChange(rt.cfgPath)
	return nil
}
