package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vsinha/replenish/pkg/interfaces/cli/commands"
)

type command interface {
	Execute(ctx context.Context) error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	// .env is optional
	_ = godotenv.Load()

	var cmd command
	args := os.Args[2:]
	switch os.Args[1] {
	case "generate":
		cmd = parseGenerate(args)
	case "load":
		cmd = parseLoad(args)
	case "recommend":
		cmd = parseRecommend(args)
	case "help", "-h", "-help", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}

	if err := cmd.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseGenerate(args []string) command {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		output  = fs.String("output", "data/inventory_sales.csv", "Output CSV path")
		days    = fs.Int("days", 730, "Days of history per SKU")
		start   = fs.String("start", "2023-01-01", "First sale date, YYYY-MM-DD")
		seed    = fs.Int64("seed", 42, "Random seed, 0 for time based")
		verbose = fs.Bool("verbose", false, "Enable verbose output")
		help    = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	return commands.NewGenerateCommand(commands.GenerateConfig{
		Output:  *output,
		Days:    *days,
		Start:   *start,
		Seed:    *seed,
		Verbose: *verbose,
		Help:    *help,
	})
}

func parseLoad(args []string) command {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	var (
		input      = fs.String("input", "data/inventory_sales.csv", "Sales history CSV")
		policies   = fs.String("policies", "", "Replenishment policies CSV")
		configFile = fs.String("config", "", "Config file")
		verbose    = fs.Bool("verbose", false, "Enable debug logging")
		help       = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	return commands.NewLoadCommand(commands.LoadConfig{
		Input:      *input,
		Policies:   *policies,
		ConfigFile: *configFile,
		Verbose:    *verbose,
		Help:       *help,
	})
}

func parseRecommend(args []string) command {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	var (
		input    = fs.String("input", "data/inventory_sales.csv", "Sales history CSV")
		policies = fs.String("policies", "", "Replenishment policies CSV")
		sku      = fs.String("sku", "", "Recommend for one SKU only")
		days     = fs.Int("days", 30, "Forecast days requested")
		today    = fs.String("today", "", "Reference date, YYYY-MM-DD (default: date of latest record)")
		lookback = fs.Int("lookback", 8, "Weeks of same-weekday history per estimate")
		format   = fs.String("format", "text", "Output format: text, json, csv, xlsx")
		out      = fs.String("out", "", "Output file")
		verbose  = fs.Bool("verbose", false, "Enable verbose output")
		help     = fs.Bool("help", false, "Show help message")
	)
	fs.Parse(args)

	return commands.NewRecommendCommand(commands.RecommendConfig{
		Input:         *input,
		Policies:      *policies,
		SKU:           *sku,
		Days:          *days,
		Today:         *today,
		LookbackWeeks: *lookback,
		Format:        *format,
		OutputFile:    *out,
		Verbose:       *verbose,
		Help:          *help,
	})
}

func printUsage() {
	fmt.Println(`Replenishment planning tool

USAGE:
    replenish <command> [OPTIONS]

COMMANDS:
    generate    Write synthetic daily sales history to CSV
    load        Load sales history and policies into Postgres
    recommend   Compute recommendations from a CSV without a database

Run "replenish <command> -help" for command options.`)
}
