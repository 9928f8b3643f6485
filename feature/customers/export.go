package customers

import (
	"fmt"
	"io"

	"customer-sync/core/customer"
	"customer-sync/core/reconcile"

	"github.com/xuri/excelize/v2"
)

const (
	resultsSheet = "Customers"
	summarySheet = "Summary"
)

// WriteWorkbook writes an xlsx workbook with one row per classified record
// and a summary sheet.
func WriteWorkbook(w io.Writer, plan *reconcile.ReconcilePlan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	header := []any{"Company ID", "Name", "Fax", "External ID", "Status"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range plan.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{c.CompanyID, c.Name, c.Fax, c.ExternalID, string(c.Status)}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	s := plan.Summary
	summary := [][]any{
		{"Status", "Count"},
		{string(customer.StatusAdded), s.Added},
		{string(customer.StatusMissing), s.Missing},
		{string(customer.StatusDifferent), s.Different},
		{string(customer.StatusUnchanged), s.Unchanged},
		{"Total", s.TotalItems},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}
