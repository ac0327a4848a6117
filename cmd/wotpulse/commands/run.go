package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/wotpulse/config"
	"github.com/teranos/wotpulse/identityqueue"
	"github.com/teranos/wotpulse/internal/obslog"
	"github.com/teranos/wotpulse/job"
)

// RunCmd starts the coordinator and its identity queue watcher in the
// foreground, until SIGINT/SIGTERM.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the coordinator and identity queue watcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := obslog.Named("cmd.run")
		logger.Infow("starting wotpulse", "config", cfg.String())

		queue, err := identityqueue.NewQueue(cfg.Watch.QueueDir)
		if err != nil {
			return fmt.Errorf("failed to open identity queue: %w", err)
		}

		ticker := job.NewRealTicker()
		executor := job.NewPoolExecutor(cfg.Executor.Workers)
		coordinator := job.New(
			cfg.Job.Name,
			identityqueue.RescoreWork(queue),
			time.Duration(cfg.Job.DefaultDelayMS)*time.Millisecond,
			ticker,
			executor,
			job.WithSchedulerSlack(time.Duration(cfg.Job.SchedulerSlackMS)*time.Millisecond),
		)

		watcher, err := identityqueue.NewWatcher(queue.Dir(), coordinator)
		if err != nil {
			return fmt.Errorf("failed to start identity queue watcher: %w", err)
		}
		watcher.Start()

		configWatcher, err := config.NewWatcher(configFilePath(cmd), time.Duration(cfg.Watch.DebounceMS)*time.Millisecond)
		if err == nil {
			configWatcher.Start()
			defer configWatcher.Stop()
		} else {
			logger.Warnw("no config file to watch for hot-reload", "error", err)
		}

		logger.Infow("wotpulse running, press Ctrl+C to stop")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		logger.Infow("shutting down")
		watcher.Stop()
		coordinator.Terminate()
		coordinator.WaitForTermination(30 * time.Second)
		executor.Wait()
		obslog.Cleanup()

		logger.Infow("wotpulse stopped")
		return nil
	},
}

func configFilePath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path := configFilePath(cmd); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
