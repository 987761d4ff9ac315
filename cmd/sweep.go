package cmd

import (
	"fmt"

	"charityfund/config"
	"charityfund/models"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Allocate every donation that is not yet fully allocated",
	RunE:  runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx, config.Get())
	if err != nil {
		return err
	}
	defer rt.Close()

	result, sweepErr := rt.allocations.SweepAll(ctx, actorFlag())
	if result == nil {
		return fmt.Errorf("sweep failed: %w", sweepErr)
	}

	if flagJSON {
		if err := printJSON(sweepJSON(result)); err != nil {
			return err
		}
	} else {
		printSweep(result)
	}

	if sweepErr != nil {
		return fmt.Errorf("sweep finished but was not recorded: %w", sweepErr)
	}
	return nil
}

func sweepJSON(result *models.SweepResult) map[string]any {
	outcomes := make([]map[string]any, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		entry := map[string]any{"donation_id": o.DonationID}
		if o.Err != nil {
			entry["error"] = o.Err.Error()
		} else if o.Result != nil {
			entry["status"] = o.Result.Donation.Status
			entry["allocated"] = money(o.Result.TotalAllocated())
		}
		outcomes = append(outcomes, entry)
	}
	return map[string]any{"run": result.Run, "outcomes": outcomes}
}

func printSweep(result *models.SweepResult) {
	rows := make([][]string, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		switch {
		case o.Err != nil:
			rows = append(rows, []string{fmt.Sprintf("%d", o.DonationID), errorStyle.Render("failed"), "", o.Err.Error()})
		case o.Result != nil:
			rows = append(rows, []string{
				fmt.Sprintf("%d", o.DonationID),
				string(o.Result.Donation.Status),
				money(o.Result.TotalAllocated()),
				"",
			})
		}
	}

	title := "Sweep"
	if result.Run != nil {
		title = fmt.Sprintf("Sweep %s", result.Run.RunID)
	}
	if len(rows) == 0 {
		fmt.Println(titleStyle.Render(title))
		fmt.Println(mutedStyle.Render("Nothing to allocate"))
		return
	}
	fmt.Println(renderTable(title, []string{"Donation", "Status", "Allocated", "Error"}, rows))

	if result.Run != nil {
		fmt.Printf("Processed %d, failed %d, allocated %s\n",
			result.Run.DonationsProcessed, result.Run.DonationsFailed, money(result.Run.TotalAllocated))
	}
}
