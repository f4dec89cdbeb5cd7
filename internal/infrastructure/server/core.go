package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/ai"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/registry"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/runtime"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/tracing"
	httpclient "github.com/GriffinCanCode/Studio/backend/internal/providers/http/client"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

// Core is the transport-independent application: the edited document, its
// storage, the runtime sessions and the AI service. The HTTP server and the
// MCP server both sit on top of one.
type Core struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Sessions  *runtime.Manager
	AI        *ai.Service
	Seeder    *registry.Seeder
	Metrics   *monitoring.Metrics
	Tracer    *tracing.Tracer

	repo    *storage.Repository
	watcher *storage.Watcher
	logger  *logging.Logger

	stopReload func()
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewCore wires storage, the workspace, the flow engine and the AI service
// from cfg and loads the stored document.
func NewCore(ctx context.Context, cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) (*Core, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := storage.Open(cfg.StorageConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	repo := storage.NewRepository(store, cfg.Storage.Compress, logger.Component("storage"), metrics)
	logger.Info("Storage opened",
		zap.String("driver", store.Driver()),
		zap.String("path", cfg.Storage.Path),
		zap.Bool("compress", cfg.Storage.Compress))

	ws := workspace.New(repo, logger.Component("workspace"), metrics)
	res, err := ws.Load(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	logger.Info("Schema loaded", zap.Uint64("version", res.Version))

	tracer := tracing.New("studio", logger.Component("tracing"))

	var completer ai.Completer
	if cfg.UseRemoteAI() {
		completer = ai.NewClient(ai.Config{
			BaseURL: cfg.AI.BaseURL,
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout.Std(),
		}, logger.Component("ai"), metrics)
		logger.Info("Using remote AI endpoint", zap.String("base_url", cfg.AI.BaseURL), zap.String("model", cfg.AI.Model))
	} else {
		completer = ai.NewMock(logger.Component("ai"))
		logger.Info("Using mock AI responder")
	}

	engineCfg := cfg.EngineConfig()
	opts := []engine.Option{
		engine.WithCompleter(ai.Degrade(completer, logger.Component("ai"))),
		engine.WithScriptRunner(engine.NewSandbox(cfg.Engine.ScriptTimeout.Std(), logger.Component("script"))),
		engine.WithLogger(logger.Component("engine")),
		engine.WithMetrics(metrics),
		engine.WithTracer(tracer),
	}
	if engineCfg.RequestMode == engine.RequestLive {
		reqOpts := httpclient.DefaultOptions()
		reqOpts.Name = "flow-requests"
		reqOpts.RateLimit = cfg.Engine.RequestRate
		opts = append(opts, engine.WithRequester(httpclient.NewClient(reqOpts, logger.Component("requests"))))
	}
	eng := engine.New(engineCfg, opts...)
	logger.Info("Flow engine ready",
		zap.String("policy", cfg.Engine.FlowConcurrency),
		zap.String("request_mode", cfg.Engine.RequestMode))

	c := &Core{
		Config:    cfg,
		Workspace: ws,
		Sessions:  runtime.NewManager(eng, logger.Component("runtime"), metrics),
		AI:        ai.NewService(completer, logger.Component("ai")),
		Metrics:   metrics,
		Tracer:    tracer,
		repo:      repo,
		logger:    logger,
	}
	c.startReload()

	if cfg.Library.Dir != "" {
		c.Seeder = registry.NewSeeder(ws, cfg.Library.Dir, cfg.Library.Pattern, logger.Component("library"))
		if _, err := c.Seeder.Seed(ctx); err != nil {
			logger.Warn("Failed to seed component library", zap.Error(err))
		}
	}

	if cfg.Storage.Watch {
		if err := c.startWatch(); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// startReload pushes every applied edit into the live sessions
func (c *Core) startReload() {
	events, cancel := c.Workspace.Subscribe()
	c.stopReload = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for ev := range events {
			c.Sessions.ReloadAll(ev.Schema)
		}
	}()
}

// startWatch feeds external edits of the schema file into the raw text
// channel. Only the file driver has a file to watch.
func (c *Core) startWatch() error {
	if c.Config.Storage.Driver != storage.DriverFile {
		c.logger.Warn("Schema watch needs the file driver, ignoring",
			zap.String("driver", c.Config.Storage.Driver))
		return nil
	}

	log := c.logger.Component("watch")
	watcher, err := storage.NewWatcher(c.Config.Storage.Path, c.Config.Storage.WatchDebounce.Std(), func(data []byte) {
		text, err := c.rawJSON(data)
		if err != nil {
			log.Warn("External schema edit rejected", zap.Error(err))
			return
		}
		res, err := c.Workspace.ApplyRawJSON(text)
		if err != nil {
			log.Warn("External schema edit rejected", zap.Error(err))
			return
		}
		log.Info("Applied external schema edit", zap.Uint64("version", res.Version))
	}, log)
	if err != nil {
		return fmt.Errorf("failed to watch schema file: %w", err)
	}
	c.repo.OnSaved(watcher.Remember)
	c.watcher = watcher
	log.Info("Watching schema file", zap.String("path", c.Config.Storage.Path))
	return nil
}

// rawJSON converts a YAML schema file to the JSON the raw channel accepts
func (c *Core) rawJSON(data []byte) ([]byte, error) {
	format := c.repo.Format()
	if format == codec.FormatJSON {
		return data, nil
	}
	var doc any
	if err := codec.Decode(format, data, &doc); err != nil {
		return nil, err
	}
	return codec.Marshal(doc)
}

// Close stops background work and releases storage. The document is not
// saved implicitly.
func (c *Core) Close() error {
	var errs []error
	c.closeOnce.Do(func() {
		if c.watcher != nil {
			if err := c.watcher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close watcher: %w", err))
			}
		}
		if c.stopReload != nil {
			c.stopReload()
		}
		c.wg.Wait()
		c.Sessions.Close()
		c.Tracer.Close()
		if err := c.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	})
	return errors.Join(errs...)
}
