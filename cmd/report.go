package cmd

import (
	"context"
	"fmt"

	"charityfund/config"
	"charityfund/models"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report allocation totals",
}

var reportNeedsCmd = &cobra.Command{
	Use:   "needs",
	Short: "Allocated total per need",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withReports(cmd, func(ctx context.Context, rt *runtime) error {
			totals, err := rt.reports.TotalsByNeed(ctx)
			if err != nil {
				return err
			}
			return printTargetTotals("Totals by need", totals)
		})
	},
}

var reportBeneficiariesCmd = &cobra.Command{
	Use:   "beneficiaries",
	Short: "Allocated total per beneficiary",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withReports(cmd, func(ctx context.Context, rt *runtime) error {
			totals, err := rt.reports.TotalsByBeneficiary(ctx)
			if err != nil {
				return err
			}
			return printTargetTotals("Totals by beneficiary", totals)
		})
	},
}

var reportDonorsCmd = &cobra.Command{
	Use:   "donors",
	Short: "Donated and allocated totals per donor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withReports(cmd, func(ctx context.Context, rt *runtime) error {
			totals, err := rt.reports.TotalsByDonor(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(totals)
			}

			rows := make([][]string, 0, len(totals))
			for _, t := range totals {
				rows = append(rows, []string{t.DonorRef, money(t.Donated), money(t.Allocated), money(t.Available())})
			}
			fmt.Println(renderTable("Totals by donor", []string{"Donor", "Donated", "Allocated", "Available"}, rows))
			return nil
		})
	},
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Overall donation and ledger totals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withReports(cmd, func(ctx context.Context, rt *runtime) error {
			s, err := rt.reports.FundsSummary(ctx)
			if err != nil {
				return err
			}
			if flagJSON {
				return printJSON(s)
			}

			fmt.Println(renderTable("Funds", []string{"Metric", "Value"}, [][]string{
				{"Donated", money(s.TotalDonated)},
				{"Allocated", money(s.TotalAllocated)},
				{"Available", money(s.AvailableFunds())},
				{"Donations", fmt.Sprintf("%d", s.DonationCount)},
				{"Donors", fmt.Sprintf("%d", s.DonorCount)},
				{"Unallocated", fmt.Sprintf("%d", s.UnallocatedCount)},
				{"Partially allocated", fmt.Sprintf("%d", s.PartiallyCount)},
				{"Fully allocated", fmt.Sprintf("%d", s.FullyAllocatedCount)},
			}))
			return nil
		})
	},
}

func init() {
	reportCmd.AddCommand(reportNeedsCmd, reportBeneficiariesCmd, reportDonorsCmd, reportSummaryCmd)
	rootCmd.AddCommand(reportCmd)
}

func withReports(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx, config.Get())
	if err != nil {
		return err
	}
	defer rt.Close()

	return fn(ctx, rt)
}

func printTargetTotals(title string, totals []*models.TargetTotal) error {
	if flagJSON {
		return printJSON(totals)
	}

	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{fmt.Sprintf("%d", t.ID), t.Name, money(t.Total), fmt.Sprintf("%d", t.AllocationCount)})
	}
	fmt.Println(renderTable(title, []string{"ID", "Name", "Total", "Allocations"}, rows))
	return nil
}
