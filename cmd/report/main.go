// Command report prints the aggregate statistics of a trades JSON file,
// offline, without running the server.
//
// Usage:
//
//	report [-file data/trades.json] [-policy 0|avg|median] [-loss 100]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"optionsjournal/internal/analytics"
	"optionsjournal/internal/domain"
	"optionsjournal/internal/pnl"
	"optionsjournal/internal/timeutil"
)

func main() {
	file := flag.String("file", "./data/trades.json", "trades JSON file")
	policyArg := flag.String("policy", "0", "exit policy: rank, avg, or median")
	lossModifier := flag.Float64("loss", pnl.DefaultLossModifierPercent, "loss percent when no eligible high exists")
	flag.Parse()

	policy, err := pnl.ParseExitPolicy(*policyArg)
	if err != nil {
		log.Fatalf("Error parsing exit policy: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Error reading trades file: %v", err)
	}
	var trades []*domain.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		log.Fatalf("Error decoding trades file: %v", err)
	}
	if len(trades) == 0 {
		log.Println("No trades found.")
		return
	}

	engine := pnl.NewEngine(pnl.Options{Policy: policy, LossModifierPercent: lossModifier})
	results := engine.ComputeAll(trades)
	summary := analytics.NewAggregator(engine, nil).Summarize(context.Background(), trades, results)

	fmt.Printf("Trades: %d (%d excluded)\n", len(trades), len(trades)-len(results))
	fmt.Printf("Total P/L: %+.2f (%.2f%%) on cost %.2f\n",
		summary.TotalProfitDollars, summary.TotalPercent, summary.TotalCostDollars)
	fmt.Printf("Win ratio: %.2f%%  weighted: %.2f%%  (%d W / %d L)\n",
		summary.WinRatio, summary.WeightedWinRatio, summary.WinCount, summary.LossCount)
	fmt.Printf("Composition: %d calls, %d puts, %d 0DTE, %d swing (%d swing-day)\n",
		summary.Calls, summary.Puts, summary.ZeroDTE, summary.Swings, summary.SwingsDay)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Day\tTrades\tWins\tLosses\tP/L bought\tP/L sold\t")
	for i, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\t%.2f\t\n",
			day,
			summary.TradesByDay[i],
			summary.WinLossByDay[i].Wins,
			summary.WinLossByDay[i].Losses,
			summary.PLByDayBought[i],
			summary.PLByDaySold[i],
		)
	}
	w.Flush()

	printTiming := func(label string, m *analytics.Millis) {
		if m == nil {
			fmt.Printf("%s: n/a\n", label)
			return
		}
		fmt.Printf("%s: %s\n", label, timeutil.FormatDuration(m.Duration()))
	}
	printTiming("Avg time between highs", summary.AvgTimeBetweenHighs)
	printTiming("Median time between highs", summary.MedianTimeBetweenHighs)
	printTiming("Avg high-to-low gap", summary.AvgHighToLow)
	printTiming("Median high-to-low gap", summary.MedianHighToLow)
}
