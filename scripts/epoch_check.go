package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/qdashboard/qdashboard/internal/model"
	"github.com/qdashboard/qdashboard/internal/service/epoch"
	"github.com/qdashboard/qdashboard/internal/service/qubicrpc"
	"github.com/qdashboard/qdashboard/internal/view"
)

// Prints epoch progress for a known sample and, unless "offline" is passed,
// for the live RPC figures.
func main() {
	sample := model.StatsSnapshot{
		Epoch:                    175,
		CurrentTick:              31584874,
		TicksInCurrentEpoch:      84874,
		EmptyTicksInCurrentEpoch: 6722,
		EpochTickQuality:         92.080025,
	}
	fmt.Println("=== SAMPLE ===")
	printProgress(sample)

	if len(os.Args) > 1 && os.Args[1] == "offline" {
		return
	}

	url := os.Getenv("QUBIC_RPC_URL")
	if url == "" {
		url = qubicrpc.DefaultURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rpc := qubicrpc.NewClient(url, 10*time.Second)
	source := qubicrpc.NewSource(rpc, 0)
	stats, err := source.Stats(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch latest stats: %v", err)
	}

	fmt.Printf("\n=== LIVE (%s) ===\n", rpc.BaseURL())
	printProgress(stats)
	fmt.Printf("Price:           %s\n", view.FormatPrice(stats.Price))
	fmt.Printf("Market cap:      $%s\n", view.FormatLargeNumber(float64(stats.MarketCap)))
}

func printProgress(s model.StatsSnapshot) {
	p := epoch.FromStats(s)
	fmt.Printf("Epoch:           %d\n", s.Epoch)
	fmt.Printf("Initial tick:    %s\n", view.FormatInt(p.InitialTick))
	fmt.Printf("Current tick:    %s\n", view.FormatInt(p.CurrentTick))
	fmt.Printf("Estimated total: %s\n", view.FormatInt(p.EstimatedTotalTicks))
	fmt.Printf("Remaining ticks: %s\n", view.FormatInt(p.RemainingTicks))
	fmt.Printf("Progress:        %s\n", view.FormatPercent(p.Percent, 1))
	fmt.Printf("Time remaining:  %s\n", epoch.FormatRemaining(p.EstimatedRemaining))
}
