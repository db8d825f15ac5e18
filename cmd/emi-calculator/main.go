package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/internal/config"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/output"
	"github.com/iwvelando/emi-calculator/pkg/validation"
	"go.uber.org/zap"
)

// applyOverrides copies every non-empty flag value onto the loan inputs.
func applyOverrides(in *calculator.Inputs, overrides map[string]*string) {
	targets := map[string]*string{
		"amount":   &in.LoanAmount,
		"rate":     &in.InterestRate,
		"tenure":   &in.Tenure,
		"unit":     &in.TenureUnit,
		"compare":  &in.ComparisonRates,
		"currency": &in.Currency,
		"start":    &in.StartDate,
	}
	for name, value := range overrides {
		if value != nil && *value != "" {
			*targets[name] = *value
		}
	}
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, markdown, html")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	overrides := map[string]*string{
		"amount":   flag.String("amount", "", "loan amount override"),
		"rate":     flag.String("rate", "", "annual interest rate override, in percent"),
		"tenure":   flag.String("tenure", "", "tenure override"),
		"unit":     flag.String("unit", "", "tenure unit override (years, months)"),
		"compare":  flag.String("compare", "", "comma-separated comparison rates override"),
		"currency": flag.String("currency", "", "currency override (INR, NPR)"),
		"start":    flag.String("start", "", "first installment month override (YYYY-MM)"),
	}
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	applyOverrides(&conf.Loan, overrides)

	logger, err := config.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	calc, err := calculator.New(logger, nil).Calculate(conf.Loan)
	if err != nil {
		logger.Fatal("failed to calculate loan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, calc); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
