package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"customer-sync/core/reconcile"
	"customer-sync/feature/customers"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for reconcile customers command
	applyCustomers    bool
	dryRunCustomers   bool
	baselineCustomers bool
	xlsxPath          string
	yesConfirm        bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile company records with the external directory",
	Long: `Reconcile company records against the previous pass to detect added,
missing and renamed customers. Optionally apply the differences.`,
}

// customersReconcileCmd performs customer reconciliation with optional apply.
var customersReconcileCmd = &cobra.Command{
	Use:   "customers",
	Short: "Reconcile customers (report + optionally apply)",
	Long: `Reconcile the company customer list against the previous pass.

Reports Added, Missing, Different and Unchanged customers. With --apply,
Added customers are created in the directory and Missing ones are deleted.

Examples:
  # Report only
  reconcile customers

  # Apply with interactive confirmation
  reconcile customers --apply

  # Apply with auto-confirm (non-interactive)
  reconcile customers --apply --yes

  # Export the pass to a workbook
  reconcile customers --xlsx report.xlsx`,
	RunE: runCustomersReconcile,
}

func init() {
	reconcileCmd.AddCommand(customersReconcileCmd)

	customersReconcileCmd.Flags().BoolVar(&applyCustomers, "apply", false, "Apply directory adds and deletes")
	customersReconcileCmd.Flags().BoolVar(&dryRunCustomers, "dry-run", false, "Force dry-run (no mutations even with --yes)")
	customersReconcileCmd.Flags().BoolVar(&baselineCustomers, "baseline", true, "Seed the engine from the latest archived report")
	customersReconcileCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the classified customers to an xlsx file")
	customersReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runCustomersReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rt, err := bootstrap(ctx, bootstrapOptions{database: true, archive: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	l := rt.log

	l.Info("Starting customer reconciliation")

	if err := rt.service.Verify(ctx); err != nil {
		return fmt.Errorf("customer source is not usable: %w", err)
	}

	if baselineCustomers {
		if n, err := rt.service.RestoreBaseline(ctx); err != nil {
			l.Warn("No baseline restored, every customer will be Added", zap.Error(err))
		} else {
			l.Info("Baseline restored", zap.Int("records", n))
		}
	}

	opts := reconcile.ReconcileOptions{
		DoAdd:     applyCustomers,
		DoDelete:  applyCustomers,
		DryRun:    dryRunCustomers,
		Confirmed: false, // Will be set after confirmation prompt
	}

	// Step 1: Plan (always runs)
	l.Info("Planning reconciliation...")
	result, err := rt.service.Reconcile(ctx, nil, opts)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}

	// Step 2: Print report
	printReconcileReport(l, result.Plan)

	if xlsxPath != "" {
		if err := writeWorkbookFile(xlsxPath, result.Plan); err != nil {
			return err
		}
		l.Info("Workbook written", zap.String("path", xlsxPath))
	}

	// Step 3: Check if actions are requested
	if !applyCustomers {
		l.Info("No actions requested. Use --apply to add and delete directory customers.")
		return nil
	}

	// Step 4: Apply (if confirmed)
	if dryRunCustomers {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if len(result.Plan.Actions) == 0 {
		l.Info("No actions required based on current flags.")
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	opts.Confirmed = true

	l.Info("Applying actions...")
	applyErr := rt.service.Apply(ctx, result, opts)
	l.Info("Executed actions", zap.Int("count", result.Executed))
	if result.Report != "" {
		l.Info("Report archived", zap.String("object", result.Report))
	}
	if applyErr != nil {
		return fmt.Errorf("failed to apply plan: %w", applyErr)
	}
	return nil
}

func writeWorkbookFile(path string, plan *reconcile.ReconcilePlan) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	if err := customers.WriteWorkbook(f, plan); err != nil {
		f.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return f.Close()
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.ReconcilePlan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("total_items", s.TotalItems),
		zap.Int("added", s.Added),
		zap.Int("missing", s.Missing),
		zap.Int("different", s.Different),
		zap.Int("unchanged", s.Unchanged),
	)

	if len(plan.Actions) > 0 {
		l.Info("Planned actions",
			zap.Int("add_actions", s.AddActions),
			zap.Int("delete_actions", s.DeleteActions),
			zap.Int("total_actions", len(plan.Actions)),
		)

		// Show sample of actions (max 5 for logger)
		maxShow := min(5, len(plan.Actions))
		for _, action := range plan.Actions[:maxShow] {
			l.Info("Sample action",
				zap.String("type", string(action.Type)),
				zap.String("key", action.Key),
				zap.String("reason", action.Reason),
			)
		}
		if len(plan.Actions) > maxShow {
			l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
		}
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
