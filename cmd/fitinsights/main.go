// fitinsights analyses exported activity and wellness records.
//
// Usage:
//
//	fitinsights analyze   --data-dir=<dir> --out=<dir> [--format=parquet|csv|xlsx|json]
//	fitinsights records   --data-dir=<dir> [--start=YYYY-MM-DD] [--end=YYYY-MM-DD]
//	fitinsights load      [--method=trimp_edwards|duration_hr_basic|aerobic_te_sum]
//	fitinsights zones     [--period=weekly|monthly]
//	fitinsights wellness  [--period=weekly|monthly]
//	fitinsights correlate --x=<metric> --y=<metric> [--lag=0|1] | --key-pairs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
