package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/teranos/wotpulse/identityqueue"
)

// TriggerCmd drops a synthetic identity document into the watched queue
// directory so a running `wotpulse run` process picks it up through the
// same fsnotify path a real producer would use. There is no IPC to an
// already-running coordinator - the coordinator is in-process only.
var TriggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Drop a synthetic identity file into the watched queue directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		queue, err := identityqueue.NewQueue(cfg.Watch.QueueDir)
		if err != nil {
			return fmt.Errorf("failed to open identity queue: %w", err)
		}

		doc := fmt.Sprintf(`<WoT_Identity><Identity><ID>synthetic-%d</ID><Edition>1</Edition></Identity></WoT_Identity>`,
			time.Now().UnixNano())

		path, err := queue.Enqueue([]byte(doc))
		if err != nil {
			return fmt.Errorf("failed to enqueue synthetic identity: %w", err)
		}

		fmt.Printf("wrote %s\n", path)
		return nil
	},
}
