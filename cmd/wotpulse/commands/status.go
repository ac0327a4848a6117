package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/wotpulse/identityqueue"
	"github.com/teranos/wotpulse/job"
)

// StatusCmd constructs a coordinator in-process against the same queue
// directory a running daemon would use and prints its starting state.
// This is a local smoke-test, not a query against a running process -
// there is no wire protocol at this boundary.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of a locally constructed coordinator",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		queue, err := identityqueue.NewQueue(cfg.Watch.QueueDir)
		if err != nil {
			return fmt.Errorf("failed to open identity queue: %w", err)
		}

		coordinator := job.New(
			cfg.Job.Name,
			identityqueue.RescoreWork(queue),
			time.Duration(cfg.Job.DefaultDelayMS)*time.Millisecond,
			job.NewRealTicker(),
			job.NewPoolExecutor(cfg.Executor.Workers),
			job.WithSchedulerSlack(time.Duration(cfg.Job.SchedulerSlackMS)*time.Millisecond),
		)

		fmt.Printf("job: %s\n", coordinator.Name())
		fmt.Printf("state: %s\n", coordinator.GetState())
		fmt.Printf("queue: %s\n", queue.Dir())
		return nil
	},
}
