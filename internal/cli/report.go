package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"backoffice/internal/service"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(scanDueCmd)

	dashboardCmd.Flags().String("from", "", "Start date, YYYY-MM-DD")
	dashboardCmd.Flags().String("to", "", "End date, YYYY-MM-DD")
	dashboardCmd.Flags().Bool("json", false, "Print the raw JSON response")
}

// ─── dashboard ──────────────────────────────────────────────────────────────

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard totals",
	Long:  `Computes the same figures as GET /api/dashboard. Both dates are optional.`,
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	asJSON, _ := cmd.Flags().GetBool("json")

	e, err := connect()
	if err != nil {
		return err
	}
	defer e.close()

	res, err := e.services.Dashboard.GetDashboard(cmdContext(cmd), from, to)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printDashboard(cmd.OutOrStdout(), res)
}

func printDashboard(out io.Writer, res service.DashboardResponse) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"Total sales", res.TotalSales},
		{"Total expenses", res.TotalExpenses},
		{"Remaining cash", res.RemainingCash},
		{"Remaining debts", res.RemainingDebts},
		{"Net profit/loss", res.NetProfitLoss},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
	}
	fmt.Fprintf(w, "\nShifts\t%d\nDebts\t%d\nExpenses\t%d\n", res.ShiftCount, res.DebtCount, res.ExpenseCount)
	return w.Flush()
}

// ─── scan-due ───────────────────────────────────────────────────────────────

var scanDueCmd = &cobra.Command{
	Use:   "scan-due",
	Short: "List unpaid debts that are overdue or due soon",
	RunE:  runScanDue,
}

func runScanDue(cmd *cobra.Command, args []string) error {
	e, err := connect()
	if err != nil {
		return err
	}
	defer e.close()

	due, err := e.services.Reminder.DueDebts(cmdContext(cmd))
	if err != nil {
		return err
	}
	return printDue(cmd.OutOrStdout(), due, e.cfg.Reminder.WindowDays)
}

func printDue(out io.Writer, due []service.DueDebtResponse, windowDays int) error {
	if len(due) == 0 {
		fmt.Fprintf(out, "No unpaid debts due within %d days.\n", windowDays)
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEBTOR\tPHONE\tDUE\tREMAINING\tSTATE")
	for _, d := range due {
		state := fmt.Sprintf("in %d days", d.DaysUntilDue)
		if d.Overdue {
			state = fmt.Sprintf("overdue %d days", -d.DaysUntilDue)
		} else if d.DaysUntilDue == 0 {
			state = "due today"
		}
		dueDate := ""
		if d.DueDate != nil {
			dueDate = *d.DueDate
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.DebtorName, d.Phone, dueDate, d.RemainingAmount, state)
	}
	return w.Flush()
}
