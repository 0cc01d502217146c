package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gem-enterprise/gemhub/config"
)

var (
	drainLimit   int
	drainPublish bool

	announceChannel string
	announceType    string
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one content cycle and print the report",
	Long: `Fetch every enabled feed, customize the newest items, auto-approve trusted sources
and print the cycle report as JSON.`,
	RunE: runCycle,
}

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Fetch, then drain approved items into post records",
	Long: `Run one content cycle, then move approved items to posted and print the post records.
With --publish the records are also delivered to their channels.`,
	RunE: runDrain,
}

var announceCmd = &cobra.Command{
	Use:   "announce",
	Short: "Send a canned post (motivation, tip, market) to a channel",
	RunE:  runAnnounce,
}

func init() {
	drainCmd.Flags().IntVar(&drainLimit, "limit", 0, "Maximum items to drain (0 = default 5)")
	drainCmd.Flags().BoolVar(&drainPublish, "publish", false, "Deliver the drained records")

	announceCmd.Flags().StringVar(&announceChannel, "channel", "client", "Channel name: security, client or realestate")
	announceCmd.Flags().StringVar(&announceType, "type", "motivation", "Post type: motivation, tip or market")
}

func runCycle(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd.Context(), config.AppConfig, logger)
	if err != nil {
		return err
	}
	defer a.close()

	return printJSON(cmd, a.orchestrator.RunCycle(cmd.Context()))
}

func runDrain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, config.AppConfig, logger)
	if err != nil {
		return err
	}
	defer a.close()

	a.orchestrator.RunCycle(ctx)
	records := a.orchestrator.DrainPostingQueue(ctx, drainLimit)
	if drainPublish {
		records = a.publisher.Publish(ctx, records)
	}
	return printJSON(cmd, records)
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, config.AppConfig, logger)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.publisher.Announce(ctx, announceChannel, announceType)
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("announce to %s: %s: %s", announceChannel, res.Outcome, res.Reason)
	}
	cmd.Printf("sent %s post to %s\n", announceType, announceChannel)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
