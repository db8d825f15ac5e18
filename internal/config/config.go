// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for emi-calculator.
type Configuration struct {
	Loan    calculator.Inputs `yaml:"loan"`
	Logging LoggingConfig     `yaml:"logging,omitempty"`
	Output  OutputConfig      `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, markdown, html
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to apply it on Unmarshal.
	defaults := calculator.DefaultInputs()
	v.SetDefault("loan.loanAmount", defaults.LoanAmount)
	v.SetDefault("loan.interestRate", defaults.InterestRate)
	v.SetDefault("loan.tenure", defaults.Tenure)
	v.SetDefault("loan.tenureUnit", defaults.TenureUnit)
	v.SetDefault("loan.currency", defaults.Currency)
	v.SetDefault("loan.comparisonRates", "")
	v.SetDefault("loan.startDate", "")
	v.SetDefault("loan.providerName", "")
	v.SetDefault("loan.receiverName", "")
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with EMI_ override
// file values, e.g. EMI_LOAN_INTERESTRATE=9.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.LoanValidator{
		ComparisonRates: c.Loan.ComparisonRates,
		Currency:        c.Loan.Currency,
		StartDate:       c.Loan.StartDate,
	}
	if terms, err := calculator.ParseTerms(c.Loan); err == nil {
		validator.TermMonths = terms.TermMonths
	}

	warnings := validator.ValidateAll()
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}
