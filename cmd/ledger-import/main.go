// Command ledger-import loads an exported ledger file into the configured store.
//
//	ledger-import [-dry-run] [-json] file.csv
//
// With -dry-run the file is reconciled and the candidate rows are printed
// without being stored.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"tesoreria/internal/amqp"
	"tesoreria/internal/cli"
	"tesoreria/internal/core"
	"tesoreria/internal/ledgerimport"
	"tesoreria/internal/log"
	"tesoreria/internal/services"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "reconcile and print the rows without storing them")
	asJSON := flag.Bool("json", false, "print the summary as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-dry-run] [-json] <file|->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentImport)
	cfg := cli.LoadAndValidateConfig(logger)

	content, err := readInput(flag.Arg(0), cfg.MaxImportBytes)
	if err != nil {
		logger.Error("Failed to read import file", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	be := cli.OpenBackend(ctx, logger, cfg)
	if be.Cleanup != nil {
		defer be.Cleanup()
	}

	var events services.EventPublisher
	if cfg.AMQPEnabled() && !*dryRun {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, import event will not be sent", log.FieldError, err.Error())
		} else {
			defer client.Close()
			events = client
		}
	}

	app := cli.NewApp(cfg, be.Store, events, nil, nil, logger)

	var sum services.ImportSummary
	if *dryRun {
		sum, err = app.Imports.Preview(ctx, content)
	} else {
		sum, err = app.Imports.Import(ctx, content)
	}
	if err != nil {
		var missing *ledgerimport.MissingColumnsError
		if errors.As(err, &missing) {
			fmt.Fprintf(os.Stderr, "detected headers: %s\n", strings.Join(missing.Headers, " | "))
		}
		logger.Error("Import failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	if err := printSummary(os.Stdout, sum, *dryRun, *asJSON); err != nil {
		logger.Error("Failed to print summary", log.FieldError, err.Error())
		os.Exit(1)
	}
}

func readInput(path string, maxBytes int64) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("file exceeds %d bytes", maxBytes)
	}
	return string(data), nil
}

func printSummary(w io.Writer, sum services.ImportSummary, dryRun, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	if dryRun {
		for _, tx := range sum.Transactions {
			fmt.Fprintf(w, "%s\t%-16s\t%12s %s\t%s\n",
				tx.Date, tx.MovementTypeID, core.FormatAmount(tx.Amount), tx.Currency, tx.Detail)
		}
		fmt.Fprintln(w)
	}
	if sum.ImportID != "" {
		fmt.Fprintf(w, "import:       %s\n", sum.ImportID)
	}
	fmt.Fprintf(w, "attempted:    %d\n", sum.Attempted)
	fmt.Fprintf(w, "imported:     %d\n", sum.Imported)
	fmt.Fprintf(w, "skipped:      %d\n", sum.Skipped)
	fmt.Fprintf(w, "unclassified: %d\n", sum.Unclassified)
	if len(sum.Periods) > 0 {
		fmt.Fprintf(w, "periods:      %s\n", strings.Join(sum.Periods, ", "))
	}
	return nil
}
