package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stock-researcher/internal/analysis/priceaction"
	"stock-researcher/internal/marketdata"
	"stock-researcher/pkg/utils"
)

// addMarketCommands adds the market-wide commands.
func addMarketCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newMarketCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newMarketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Market overview with major indices",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			type indexRow struct {
				Name          string  `json:"name"`
				Value         float64 `json:"value"`
				Change        float64 `json:"change"`
				ChangePercent float64 `json:"change_percent"`
				Error         string  `json:"error,omitempty"`
			}

			names := []string{"NIFTY50", "BANKNIFTY", "NIFTYIT", "SENSEX"}
			rows := make([]indexRow, 0, len(names))
			for _, name := range names {
				snapshot, err := app.Provider.Index(cmd.Context(), name)
				if err != nil {
					rows = append(rows, indexRow{Name: name, Error: err.Error()})
					continue
				}
				rows = append(rows, indexRow{
					Name:          snapshot.Name,
					Value:         snapshot.Value,
					Change:        snapshot.Change,
					ChangePercent: snapshot.ChangePercent,
				})
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"market_status": string(utils.GetMarketStatus()),
					"indices":       rows,
				})
			}

			output.Bold("Market Overview")
			output.Printf("Status: %s\n\n", output.MarketStatusText(string(utils.GetMarketStatus())))

			table := NewTable(output, "Index", "Value", "Change")
			for _, row := range rows {
				if row.Error != "" {
					table.AddRow(row.Name, "unavailable", "")
					continue
				}
				table.AddRow(row.Name,
					fmt.Sprintf("%.2f", row.Value),
					FormatChange(row.Change, row.ChangePercent))
			}
			table.Render()
			return nil
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "history SYMBOL",
		Short: "Historical price statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := strings.ToUpper(args[0])
			normalized := marketdata.NormalizePeriod(app.Period(period))

			candles, err := app.Provider.History(cmd.Context(), symbol, normalized)
			if err != nil {
				output.Error("Failed to fetch history: %v", err)
				return err
			}

			stats, err := priceaction.Summarize(symbol, normalized, candles)
			if err != nil {
				output.Error("Failed to summarize history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}

			historySummary(output, stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "history period (default from config)")
	return cmd
}
