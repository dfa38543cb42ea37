// Package report renders the dashboard as an XLSX workbook and archives it.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/ukydev/detailing-desk/internal/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names in workbook order.
const (
	SheetSummary  = "Summary"
	SheetMonthly  = "Sales by Month"
	SheetWeekday  = "Sales by Day"
	SheetServices = "Services"
	SheetInactive = "Inactive Customers"
	SheetTop      = "Top Performers"
	SheetWorkers  = "Workers"
)

// ContentType is the media type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BuildWorkbook renders d. The caller closes the returned file.
func BuildWorkbook(d models.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	b := &builder{f: f, header: header}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	b.table(SheetSummary, []any{"Metric", "Value"}, [][]any{
		{"Total customers", d.Totals.TotalCustomers},
		{"Total sales", d.Totals.TotalSales},
		{"Completed services", d.Totals.CompletedCount},
		{"Total worker payments", d.Totals.TotalWorkerPayments},
		{"Generated at", d.ComputedAt.UTC().Format(time.RFC3339)},
	})

	var months [][]any
	for m := time.January; m <= time.December; m++ {
		if v, ok := d.Sales.MonthlySales[m.String()]; ok {
			months = append(months, []any{m.String(), v})
		}
	}
	b.table(SheetMonthly, []any{"Month", "Sales"}, months)

	var days [][]any
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if v, ok := d.Sales.DayOfWeekSales[wd.String()]; ok {
			days = append(days, []any{wd.String(), v})
		}
	}
	b.table(SheetWeekday, []any{"Day", "Sales"}, days)

	services := make([]string, 0, len(d.Sales.ServicePopularity))
	for code := range d.Sales.ServicePopularity {
		services = append(services, code)
	}
	sort.Slice(services, func(i, j int) bool {
		ci, cj := d.Sales.ServicePopularity[services[i]], d.Sales.ServicePopularity[services[j]]
		if ci != cj {
			return ci > cj
		}
		return services[i] < services[j]
	})
	var serviceRows [][]any
	for _, code := range services {
		serviceRows = append(serviceRows, []any{serviceLabel(code), d.Sales.ServicePopularity[code]})
	}
	b.table(SheetServices, []any{"Service", "Bookings"}, serviceRows)

	var inactive [][]any
	for _, c := range d.InactiveCustomers {
		inactive = append(inactive, []any{c.Name, c.Phone, c.LastVisit.UTC().Format("2006-01-02"), c.TotalVisits, c.DaysSinceVisit})
	}
	b.table(SheetInactive, []any{"Name", "Phone", "Last visit", "Total visits", "Days since visit"}, inactive)

	var top [][]any
	for _, p := range d.TopWeek {
		top = append(top, []any{"Week", p.Name, p.Amount})
	}
	for _, p := range d.TopMonth {
		top = append(top, []any{"Month", p.Name, p.Amount})
	}
	b.table(SheetTop, []any{"Timeframe", "Worker", "Earnings"}, top)

	var roster [][]any
	for _, w := range d.Roster {
		roster = append(roster, []any{w.Name, string(w.CurrentStatus), w.AssignedJobCount, w.TotalEarnings})
	}
	b.table(SheetWorkers, []any{"Worker", "Status", "Assigned jobs", "Lifetime earnings"}, roster)

	if b.err != nil {
		f.Close()
		return nil, b.err
	}
	return f, nil
}

// WriteWorkbook renders d to w.
func WriteWorkbook(w io.Writer, d models.Dashboard) error {
	f, err := BuildWorkbook(d)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

type builder struct {
	f      *excelize.File
	header int
	err    error
}

func (b *builder) table(sheet string, header []any, rows [][]any) {
	if b.err != nil {
		return
	}
	if sheet != SheetSummary {
		if _, err := b.f.NewSheet(sheet); err != nil {
			b.err = fmt.Errorf("sheet %s: %w", sheet, err)
			return
		}
	}
	if err := b.f.SetSheetRow(sheet, "A1", &header); err != nil {
		b.err = fmt.Errorf("sheet %s: %w", sheet, err)
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := b.f.SetCellStyle(sheet, "A1", last, b.header); err != nil {
		b.err = fmt.Errorf("sheet %s: %w", sheet, err)
		return
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := row
		if err := b.f.SetSheetRow(sheet, cell, &row); err != nil {
			b.err = fmt.Errorf("sheet %s row %d: %w", sheet, i+2, err)
			return
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = b.f.SetColWidth(sheet, "A", lastCol, 18)
}

func serviceLabel(code string) string {
	if label, ok := models.ServiceLabels[models.Service(code)]; ok {
		return label
	}
	return code
}
