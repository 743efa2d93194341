package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-presence/internal/driver"
	"github.com/pixil98/go-presence/internal/events"
	"github.com/pixil98/go-presence/internal/listener"
	"github.com/pixil98/go-presence/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Messaging bus carrying all outbound session traffic
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Room definitions
	roomStore, err := cfg.Storage.BuildRoomStore()
	if err != nil {
		return nil, fmt.Errorf("loading room definitions: %w", err)
	}

	// The world plus registry pair is the single shared state; everything
	// else gets it injected.
	world, err := cfg.World.BuildWorld(roomStore)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}
	registry := session.NewRegistry(world, natsServer)
	dispatcher := events.NewDispatcher(world)
	sessionManager := session.NewManager(dispatcher, registry)
	cm := listener.NewConnectionManager(sessionManager)

	// Create listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		wsListener, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = wsListener
	}

	// Setup the housekeeping driver
	var driverOpts []driver.DriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	tickDriver := driver.NewDriver([]driver.Manager{world}, driverOpts...)

	return service.WorkerList{
		"nats":      natsServer,
		"driver":    tickDriver,
		"listeners": &listeners,
	}, nil
}
