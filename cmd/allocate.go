package cmd

import (
	"fmt"
	"strconv"

	"charityfund/config"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate <donation-id>",
	Short: "Allocate a donation across open needs and beneficiaries",
	Args:  cobra.ExactArgs(1),
	RunE:  runAllocate,
}

var allocateToCmd = &cobra.Command{
	Use:   "allocate-to <donation-id> <beneficiary-id> <amount>",
	Short: "Allocate an explicit amount of a donation to one beneficiary",
	Args:  cobra.ExactArgs(3),
	RunE:  runAllocateTo,
}

var allocateToNeedCmd = &cobra.Command{
	Use:   "allocate-to-need <donation-id> <need-id> <amount>",
	Short: "Allocate an explicit amount of a donation to one need",
	Args:  cobra.ExactArgs(3),
	RunE:  runAllocateToNeed,
}

func init() {
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(allocateToCmd)
	rootCmd.AddCommand(allocateToNeedCmd)
}

func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return id, nil
}

func runAllocate(cmd *cobra.Command, args []string) error {
	donationID, err := parseID("donation id", args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	rt, err := openRuntime(ctx, config.Get())
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.allocations.AllocateDonation(ctx, donationID, actorFlag())
	if err != nil {
		return fmt.Errorf("failed to allocate donation %d: %w", donationID, err)
	}

	if flagJSON {
		return printJSON(map[string]any{
			"donation_id":     result.Donation.ID,
			"previous_status": result.PreviousStatus,
			"status":          result.Donation.Status,
			"allocated":       money(result.TotalAllocated()),
			"unallocated":     money(result.Unallocated),
			"allocations":     result.Allocations,
		})
	}

	title := fmt.Sprintf("Donation %d: %s -> %s", result.Donation.ID, result.PreviousStatus, result.Donation.Status)
	if len(result.Allocations) == 0 {
		fmt.Println(titleStyle.Render(title))
		fmt.Println(mutedStyle.Render("No allocations made"))
	} else {
		fmt.Println(renderTable(title, allocationHeaders, allocationRows(result.Allocations)))
	}
	fmt.Printf("Allocated %s, unallocated %s\n", money(result.TotalAllocated()), money(result.Unallocated))
	return nil
}

func runAllocateTo(cmd *cobra.Command, args []string) error {
	donationID, err := parseID("donation id", args[0])
	if err != nil {
		return err
	}
	beneficiaryID, err := parseID("beneficiary id", args[1])
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[2], err)
	}

	ctx := cmd.Context()

	rt, err := openRuntime(ctx, config.Get())
	if err != nil {
		return err
	}
	defer rt.Close()

	allocation, err := rt.allocations.AllocateToBeneficiary(ctx, donationID, beneficiaryID, amount, actorFlag())
	if err != nil {
		return fmt.Errorf("failed to allocate donation %d: %w", donationID, err)
	}

	if flagJSON {
		return printJSON(allocation)
	}
	fmt.Printf("Allocated %s of donation %d to beneficiary %d\n", money(allocation.Amount), donationID, beneficiaryID)
	return nil
}

func runAllocateToNeed(cmd *cobra.Command, args []string) error {
	donationID, err := parseID("donation id", args[0])
	if err != nil {
		return err
	}
	needID, err := parseID("need id", args[1])
	if err != nil {
		return err
	}
	amount, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[2], err)
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, config.Get())
	if err != nil {
		return err
	}
	defer rt.Close()

	allocation, err := rt.allocations.AllocateToNeed(ctx, donationID, needID, amount, actorFlag())
	if err != nil {
		return fmt.Errorf("failed to allocate donation %d: %w", donationID, err)
	}

	if flagJSON {
		return printJSON(allocation)
	}
	fmt.Printf("Allocated %s of donation %d to need %d\n", money(allocation.Amount), donationID, needID)
	return nil
}
