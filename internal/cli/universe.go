package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// addUniverseCommands adds the stock universe commands.
func addUniverseCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newNifty50Cmd(app))
	rootCmd.AddCommand(newSectorsCmd(app))
	rootCmd.AddCommand(newPeersCmd(app))
}

func newNifty50Cmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "nifty50",
		Short: "List NIFTY50 constituents",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Universe == nil {
				return fmt.Errorf("stock universe unavailable")
			}

			stocks := app.Universe.Nifty50()
			if output.IsJSON() {
				return output.JSON(stocks)
			}

			output.Bold("NIFTY50 Constituents (%d)", len(stocks))
			table := NewTable(output, "Symbol", "Name", "Sector")
			for _, s := range stocks {
				table.AddRow(s.Symbol, TruncateString(s.Name, 40), s.Sector)
			}
			table.Render()
			return nil
		},
	}
}

func newSectorsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sectors [SECTOR]",
		Short: "List sectors, or the stocks in one sector",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Universe == nil {
				return fmt.Errorf("stock universe unavailable")
			}

			if len(args) == 0 {
				sectors := app.Universe.Sectors()
				if output.IsJSON() {
					return output.JSON(sectors)
				}
				output.Bold("Sectors (%d)", len(sectors))
				for _, s := range sectors {
					output.Printf("  %s (%d stocks)\n", s, len(app.Universe.SectorStocks(s)))
				}
				return nil
			}

			sector := strings.ToUpper(args[0])
			stocks := app.Universe.SectorStocks(sector)
			if len(stocks) == 0 {
				return fmt.Errorf("unknown sector %q", sector)
			}

			if output.IsJSON() {
				return output.JSON(stocks)
			}

			output.Bold("%s (%d stocks)", sector, len(stocks))
			table := NewTable(output, "Symbol", "Name")
			for _, s := range stocks {
				table.AddRow(s.Symbol, TruncateString(s.Name, 40))
			}
			table.Render()
			return nil
		},
	}
}

func newPeersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "peers SYMBOL",
		Short: "List sector peers of a stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Universe == nil {
				return fmt.Errorf("stock universe unavailable")
			}

			symbol := strings.ToUpper(args[0])
			stock, ok := app.Universe.Lookup(symbol)
			if !ok {
				return fmt.Errorf("unknown symbol %q", symbol)
			}

			peers := app.Universe.Peers(symbol)
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol": symbol,
					"sector": stock.Sector,
					"peers":  peers,
				})
			}

			output.Bold("Peers of %s (%s)", symbol, stock.Sector)
			table := NewTable(output, "Symbol", "Name")
			for _, p := range peers {
				table.AddRow(p.Symbol, TruncateString(p.Name, 40))
			}
			table.Render()
			return nil
		},
	}
}
