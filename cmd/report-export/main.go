// Command report-export writes the per-day sales summary as a gzipped CSV,
// for handing to accounting or spreadsheet imports.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/teamates/cafe-api/internal/domain/report"
	"github.com/teamates/cafe-api/internal/storage/postgres"
)

var csvHeader = []string{
	"day", "total_orders", "total_revenue", "sgst", "cgst", "total_tax",
	"cash_orders", "online_orders",
}

func main() {
	var (
		databaseURL string
		outFile     string
		fromStr     string
		toStr       string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&outFile, "out", "sales-summary.csv.gz", "output file path")
	flag.StringVar(&fromStr, "from", "", "start date YYYY-MM-DD (inclusive)")
	flag.StringVar(&toStr, "to", "", "end date YYYY-MM-DD (inclusive)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	from, err := parseDate(fromStr)
	if err != nil {
		slog.Error("bad --from date", slog.String("error", err.Error()))
		os.Exit(1)
	}
	to, err := parseDate(toStr)
	if err != nil {
		slog.Error("bad --to date", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, outFile, from, to); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

func run(ctx context.Context, databaseURL, outFile string, from, to time.Time) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	days, err := postgres.NewReportRepository(pool).ListDailySales(ctx, from, to)
	if err != nil {
		return errors.Wrap(err, "load sales summary")
	}

	f, err := os.Create(outFile)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	defer func() { _ = f.Close() }()

	gz := pgzip.NewWriter(f)
	w := csv.NewWriter(gz)

	if err := w.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, d := range days {
		if err := w.Write(csvRow(d)); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "close gzip stream")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close output file")
	}

	slog.Info("export completed",
		slog.String("file", outFile),
		slog.Int("days", len(days)),
	)
	return nil
}

func csvRow(d report.DailySales) []string {
	return []string{
		d.Day.Format(time.DateOnly),
		strconv.FormatInt(d.TotalOrders, 10),
		d.TotalRevenue.StringFixed(2),
		d.TotalSGST.StringFixed(2),
		d.TotalCGST.StringFixed(2),
		d.TotalTax.StringFixed(2),
		strconv.FormatInt(d.CashOrders, 10),
		strconv.FormatInt(d.OnlineOrders, 10),
	}
}
