package cmd

import (
	"context"
	"fmt"

	"customer-sync/core/customer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	addName      string
	addFax       string
	addCompanyID string
)

// customersCmd groups direct directory operations.
var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "Inspect and maintain the external customer directory",
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every customer in the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := bootstrap(ctx, bootstrapOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		all, err := rt.service.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to query customers: %w", err)
		}
		for _, c := range all {
			fmt.Println(c)
		}
		rt.log.Info("Customers listed", zap.Int("count", len(all)))
		return nil
	},
}

var customersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a single customer to the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := bootstrap(ctx, bootstrapOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		added, err := rt.service.AddAll(ctx, []customer.Customer{customer.New(addName, addFax, addCompanyID)})
		if err != nil {
			return err
		}
		fmt.Println(added[0])
		return nil
	},
}

var customersDeleteAllCmd = &cobra.Command{
	Use:   "delete-all",
	Short: "Delete every customer from the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rt, err := bootstrap(ctx, bootstrapOptions{})
		if err != nil {
			return err
		}
		defer rt.Close()

		if !confirmDestructiveAction() {
			rt.log.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		deleted, err := rt.service.DeleteAll(ctx)
		rt.log.Info("Customers deleted", zap.Int("count", deleted))
		if err != nil {
			return fmt.Errorf("some customers could not be deleted: %w", err)
		}
		return nil
	},
}

func init() {
	customersAddCmd.Flags().StringVar(&addName, "name", "", "Customer name")
	customersAddCmd.Flags().StringVar(&addFax, "fax", "", "Customer fax")
	customersAddCmd.Flags().StringVar(&addCompanyID, "company-id", "", "Company id, echoed back only")
	_ = customersAddCmd.MarkFlagRequired("name")

	customersDeleteAllCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	customersCmd.AddCommand(customersListCmd, customersAddCmd, customersDeleteAllCmd)
	RootCmd.AddCommand(customersCmd)
}
