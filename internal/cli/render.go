package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/3003mgf/harvoffe/internal/models"
)

var colorMap = map[string]func(format string, a ...interface{}) string{
	"success": color.HiGreenString,
	"error":   color.HiRedString,
	"gray":    color.WhiteString,
	"alert":   color.HiYellowString,
}

// Colored wraps text in the ANSI color registered for key; unknown
// keys pass the text through unchanged.
func Colored(text, key string) string {
	if f, ok := colorMap[key]; ok {
		return f("%s", text)
	}
	return text
}

func renderTable(headers []string, rows [][]string) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
	return b.String()
}

func RenderMenu(entries []models.MenuEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Coffee, e.Price.StringFixed(2)})
	}
	return renderTable([]string{"Coffee", "Price"}, rows)
}

// RenderCart shows every line with its line total and a closing
// To Pay row.
func RenderCart(items []models.LineItem, total string) string {
	rows := make([][]string, 0, len(items)+1)
	for _, item := range items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		rows = append(rows, []string{
			item.Coffee,
			item.Price.StringFixed(2),
			fmt.Sprint(item.Quantity),
			lineTotal.StringFixed(2),
		})
	}
	rows = append(rows, []string{Colored("To Pay (USD)", "success"), "", "", Colored(total, "success")})
	return renderTable([]string{"Item", "Unit Price", "Quantity", "Total"}, rows)
}

func RenderHistory(orders []models.Order) string {
	rows := make([][]string, 0, len(orders))
	for _, ord := range orders {
		rows = append(rows, []string{ord.ID, ord.Client, ord.Date, ord.Total.StringFixed(2), SummarizeItems(ord.Items)})
	}
	return renderTable([]string{"Id", "Client", "Date", "Total", "Items"}, rows)
}

// SummarizeItems flattens a snapshot into "Macchiato (2), Americano (1)".
func SummarizeItems(items []models.LineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (%d)", item.Coffee, item.Quantity))
	}
	return strings.Join(parts, ", ")
}

type shortcut struct {
	Shortcut    string
	Description string
}

var shortcuts = []shortcut{
	{"-r | --register", "Create a new account"},
	{"-auth | --authenticate", "Log in"},
	{"-dis | --disconnect", "Log out"},
	{"-m | --menu", "Display the coffee menu"},
	{"-o | --order", "Add items to your order"},
	{"-c | --cart", "Open and modify your cart"},
	{"-oh | --orderhistory", "Display your past orders"},
	{"-t [ORDER_ID] | --ticket [ORDER_ID]", "Email the ticket for an order"},
	{"-sh | --shortcuts", "Display this table"},
}

func RenderShortcuts() string {
	rows := make([][]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		rows = append(rows, []string{s.Shortcut, s.Description})
	}
	return renderTable([]string{"Shortcut", "Description"}, rows)
}
