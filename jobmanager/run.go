package jobmanager

import (
	"context"
	"log"
	"runtime"

	"github.com/MrRookie-AIR/PushupsbyArduino/app"
	"github.com/MrRookie-AIR/PushupsbyArduino/internal/transport"
	"github.com/MrRookie-AIR/PushupsbyArduino/types/config"
	"github.com/MrRookie-AIR/PushupsbyArduino/web"
)

// RunServer wires the container and serves the submission and status
// endpoints until ctx is cancelled.
//
// The function performs the following steps:
//  1. Builds the container for cfg.StorageDriver (schema setup runs here for postgres).
//  2. Starts the HTTP routes on cfg.HTTPPort.
//  3. Closes every connection once the server stops.
func RunServer(ctx context.Context, cfg *config.PushupConfig, opts ...app.ContainerOption) error {
	log.Printf("GOMAXPROCS Is: %d\n", runtime.GOMAXPROCS(0))

	container, err := app.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer closeContainer(container)

	router := web.NewRouteHandler(container.Queue, container.Status, container.Resolver, cfg.HTTPPort)
	return router.Serve(ctx)
}

// RunWorker drives the actuator over the configured serial port until ctx
// is cancelled.
func RunWorker(ctx context.Context, cfg *config.PushupConfig, opts ...app.ContainerOption) error {
	container, err := app.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer closeContainer(container)

	worker := container.NewWorker(transport.NewSerialTransport(cfg.SerialConfig))
	return worker.Start(ctx)
}

func closeContainer(container *app.Container) {
	if err := container.Close(); err != nil {
		log.Printf("close container: %v", err)
	}
}
