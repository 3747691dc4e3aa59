package app

import (
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/config"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/filelock"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/notify"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/poller"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Services holds the wired companion components. The engine is the
// center: the daemon server is its sink and its interactive producer,
// the notification watcher and the pollers feed it, and everything is
// configured from one CompanionConfig.
type Services struct {
	// Engine is the differential sync core all producers feed.
	Engine *engine.Engine

	// Server broadcasts flushed frames and answers socket requests.
	Server *daemon.Server

	// Store is the shared notification document, also used by the
	// notify command without a running daemon.
	Store *notify.Store

	// Watcher drains the notification document into the engine.
	Watcher *notify.Watcher

	// Pollers runs the configured backend pollers.
	Pollers *poller.Manager
}

// InitializeServices wires configuration into the engine, the daemon
// server, the notification watcher, and the pollers. The server is
// created after the engine yet serves as its sink; the closure makes
// the late binding explicit.
func InitializeServices(cfg *Config) (*Services, error) {
	companionCfg := cfg.CompanionConfig

	var srv *daemon.Server
	eng := engine.New(engine.Config{
		BackgroundDelay:  config.Duration(companionCfg.Engine.BackgroundDelay),
		NormalDelay:      config.Duration(companionCfg.Engine.NormalDelay),
		InteractiveDelay: config.Duration(companionCfg.Engine.InteractiveDelay),
		MinInterval:      config.Duration(companionCfg.Engine.MinInterval),
	}, engine.SinkFunc(func(m engine.Message) error {
		return srv.Send(m)
	}))
	daemon.RegisterProjections(eng)

	var pollers []*poller.Poller
	for _, pc := range companionCfg.Pollers {
		// Validated at load time; unset means routine polling.
		priority := engine.PriorityBackground
		if pc.Priority != "" {
			priority, _ = engine.ParsePriority(pc.Priority)
		}
		pollers = append(pollers, poller.New(poller.Config{
			Section:  pc.Section,
			Command:  pc.Command,
			Args:     pc.Args,
			Interval: config.Duration(pc.Interval),
			Priority: priority,
			Timeout:  config.Duration(pc.Timeout),
		}, eng, nil))
	}
	manager := poller.NewManager(pollers...)

	socketPath := companionCfg.Daemon.SocketPath
	if cfg.SocketPath != "" {
		socketPath = cfg.SocketPath
	}
	srv = daemon.New(daemon.Config{
		SocketPath: socketPath,
		PidPath:    companionCfg.Daemon.PidPath,
		Version:    cfg.Version,
	}, eng, manager)

	locker := filelock.New(
		config.Duration(companionCfg.Lock.Timeout),
		config.Duration(companionCfg.Lock.RetryInterval),
		config.Duration(companionCfg.Lock.StaleAfter),
	)
	store := notify.NewStore(companionCfg.Notify.Path, locker)
	watcher := notify.NewWatcher(store, eng, config.Duration(companionCfg.Notify.Debounce))

	logging.Info("Services", "Wired %d poller(s), notification document at %s",
		manager.Count(), store.Path())

	return &Services{
		Engine:  eng,
		Server:  srv,
		Store:   store,
		Watcher: watcher,
		Pollers: manager,
	}, nil
}
