package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/property-roi/internal/config"
	"github.com/iwvelando/property-roi/internal/forecast"
	"github.com/iwvelando/property-roi/internal/logging"
	"github.com/iwvelando/property-roi/internal/optimizer"
	"github.com/iwvelando/property-roi/pkg/constants"
	formatutil "github.com/iwvelando/property-roi/pkg/format"
	"github.com/iwvelando/property-roi/pkg/output"
	"github.com/iwvelando/property-roi/pkg/report"
	"github.com/iwvelando/property-roi/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, pdf")
	outputFile := flag.String("output", "", "write output to this file instead of stdout (required target for pdf)")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	optimize := flag.Bool("optimize", false, "run the optimizers configured on each scenario")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(conf.Logging, *logLevel)
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
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	target := conf.Output.File
	if *outputFile != "" {
		target = *outputFile
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		logger.Fatal("failed to compute forecast",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *optimize {
		runner, err := optimizer.NewRunner(logger, conf)
		if err != nil {
			logger.Fatal("failed to create optimizer",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		optimized, err := runner.Run()
		if err != nil {
			logger.Fatal("failed to run optimizers",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		optimized.Apply(results)
	}

	formatter := formatutil.NewFormatter(conf.Currency.Symbol, conf.Currency.Style, conf.Currency.ExchangeRate, conf.Currency.Abbreviate)
	rendered, err := render(outputFormat, results, formatter)
	if err != nil {
		logger.Fatal("failed to render output",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
			zap.Error(err),
		)
	}

	if outputFormat == constants.OutputFormatPDF && target == "" {
		target = constants.DefaultPDFFile
	}
	if err := write(target, rendered, os.Stdout); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.String("file", target),
			zap.Error(err),
		)
	}
	if target != "" {
		logger.Info("wrote report",
			zap.String("op", "main"),
			zap.String("file", target),
			zap.String("format", outputFormat),
		)
	}
}

// render produces the bytes for the selected output format.
func render(format string, results []forecast.Forecast, formatter formatutil.Formatter) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case constants.OutputFormatPretty:
		err = output.PrettyFormat(&buf, results, formatter)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(&buf, results, formatter)
	case constants.OutputFormatJSON:
		err = output.JSONFormat(&buf, results)
	case constants.OutputFormatPDF:
		return report.GeneratePDF(results, formatter)
	default:
		err = fmt.Errorf("unsupported output format: %s", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// write sends data to path, or to stdout when path is empty.
func write(path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
