// Command ecshost embeds a world, a system scheduler, and a plugin host
// that hot-reloads .so files from a directory, ticking the world at a
// fixed rate until interrupted.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/ecshost/pkg/ecs"
	"github.com/opd-ai/ecshost/pkg/logging"
	"github.com/opd-ai/ecshost/pkg/pluginhost"
)

var (
	pluginDir   = flag.String("plugin-dir", "./plugins", "Directory watched for hot-reloadable plugins")
	pluginTmp   = flag.String("plugin-tmp", "./plugins/.load", "Scratch directory for per-load plugin copies")
	maxEntities = flag.Int("max-entities", 5000, "Size of the entity ID space; ID 0 is reserved, so at most max-entities-1 are alive at once")
	tickRate    = flag.Int("tick-rate", 60, "World update rate, in ticks per second")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	logger := logging.NewLogger(logging.Config{
		Level:       logging.LogLevel(*logLevel),
		Format:      logging.TextFormat,
		AddCaller:   false,
		EnableColor: true,
	})
	entry := logger.WithField("component", "ecshost")

	if err := os.MkdirAll(*pluginDir, 0o755); err != nil {
		entry.WithError(err).Fatal("create plugin directory")
	}

	world := ecs.NewWorld(*maxEntities, logging.WorldLogger(entry))

	host, err := pluginhost.NewHost(world, *pluginDir, *pluginTmp, logging.PluginHostLogger(entry))
	if err != nil {
		entry.WithError(err).Fatal("create plugin host")
	}
	defer host.Close()
	go host.Run()

	entry.WithField("dir", *pluginDir).Info("watching plugin directory")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	tickDuration := time.Second / time.Duration(*tickRate)
	ticker := time.NewTicker(tickDuration)
	defer ticker.Stop()

	lastUpdate := time.Now()
	entry.WithField("rate", *tickRate).Info("starting tick loop")

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			dt := now.Sub(lastUpdate).Seconds()
			lastUpdate = now

			if err := world.Tick(dt); err != nil {
				entry.WithError(err).Error("tick failed")
			}
		case <-sig:
			entry.Info("shutting down")
			return
		}
	}
}
