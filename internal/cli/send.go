package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mauro-Remeseiro/AEAT-Sender/internal/config"
	"github.com/Mauro-Remeseiro/AEAT-Sender/internal/logging"
	"github.com/Mauro-Remeseiro/AEAT-Sender/internal/xmlio"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/aeat"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/soap"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an XML payload to AEAT",
	Long: `Send a pre-built XML payload to one of the AEAT SOAP services.

Examples:
  # Submit issued invoices to the SII testing environment
  aeat-sender send --config config.yaml --system sii --environment testing \
      --operation SuministroLRFacturasEmitidas --input facturas.xml

  # Inspect the envelope without dispatching
  aeat-sender send --config config.yaml --system verifactu --environment testing \
      --operation RegFactuSistemaFacturacion --input registro.xml --dry-run`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringP("config", "c", "config.yaml", "Path to the configuration file")
	sendCmd.Flags().String("system", "", "Target system: sii or verifactu")
	sendCmd.Flags().String("environment", "", "Target environment: testing or production")
	sendCmd.Flags().String("operation", "", "SOAP operation wrapping the payload")
	sendCmd.Flags().StringP("input", "i", "", "Path to the input XML payload")
	sendCmd.Flags().StringP("output-dir", "o", "", "Directory for response files (default from config)")
	sendCmd.Flags().Bool("dry-run", false, "Build and print the envelope without dispatching")
	sendCmd.Flags().Bool("debug", false, "Log at debug level regardless of config")

	sendCmd.MarkFlagFilename("config", "yaml", "yml", "json")
	sendCmd.MarkFlagFilename("input", "xml")
	sendCmd.MarkFlagDirname("output-dir")

	sendCmd.MarkFlagRequired("system")
	sendCmd.MarkFlagRequired("environment")
	sendCmd.MarkFlagRequired("operation")
	sendCmd.MarkFlagRequired("input")

	sendCmd.RegisterFlagCompletionFunc("system", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"sii\tSuministro Inmediato de Información", "verifactu\tVeriFactu"}, cobra.ShellCompDirectiveNoFileComp
	})
	sendCmd.RegisterFlagCompletionFunc("environment", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"testing\tEntorno de pruebas", "production\tEntorno de producción"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func runSend(cmd *cobra.Command, args []string) error {
	systemFlag, _ := cmd.Flags().GetString("system")
	environmentFlag, _ := cmd.Flags().GetString("environment")
	operation, _ := cmd.Flags().GetString("operation")
	inputPath, _ := cmd.Flags().GetString("input")
	configPath, _ := cmd.Flags().GetString("config")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	debug, _ := cmd.Flags().GetBool("debug")

	system, err := aeat.ParseSystem(systemFlag)
	if err != nil {
		return err
	}
	environment, err := aeat.ParseEnvironment(environmentFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return &configError{cause: err}
	}

	logOpts := logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	if debug {
		logOpts.Level = "debug"
	}
	logger, closeLog, err := logging.Setup(logOpts)
	if err != nil {
		return &configError{cause: err}
	}
	defer closeLog()

	logger.Info("starting aeat-sender",
		"system", system.String(),
		"environment", environment.String(),
		"operation", operation,
		"input", inputPath,
		"config", configPath,
	)

	payload, err := xmlio.ReadPayload(inputPath)
	if err != nil {
		return &fileError{cause: err}
	}
	if !xmlio.WellFormed(payload) {
		logger.Warn("input payload is not well-formed XML, sending anyway", "input", inputPath)
	}

	resolver := cfg.Resolver()

	if dryRun {
		return printEnvelope(cmd, resolver, system, environment, operation, payload)
	}

	transportOpts := cfg.TransportOptions()
	client, err := aeat.NewClient(&aeat.ClientConfig{
		Resolver:         resolver,
		TransportOptions: &transportOpts,
		Logger:           logger,
	})
	if err != nil {
		return &configError{cause: err}
	}

	result, err := client.Dispatch(cmd.Context(), &aeat.Request{
		System:      system,
		Environment: environment,
		Operation:   operation,
		Payload:     payload,
		Credentials: cfg.Bundle(),
	})

	// Archive whatever reply arrived, even a Fault: the operator needs
	// the document AEAT actually returned, not just the classification.
	if result != nil && len(result.Raw) > 0 {
		if outputDir == "" {
			outputDir = cfg.Output.Directory
		}
		path, writeErr := xmlio.WriteResponse(outputDir, system.String(), environment.String(), result.Raw)
		if writeErr != nil {
			logger.Error("response received but not saved", "error", writeErr)
			if err == nil {
				return &fileError{cause: writeErr}
			}
		} else {
			logger.Info("response saved", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
	}

	if err != nil {
		return err
	}

	logger.Info("submission accepted",
		"operation_id", result.OperationID,
		"duration", result.Duration,
	)
	return nil
}

// printEnvelope handles --dry-run: resolve the endpoint for its namespace,
// build the envelope and print it without touching credentials or network.
func printEnvelope(cmd *cobra.Command, resolver aeat.EndpointResolver, system aeat.System, environment aeat.Environment, operation string, payload []byte) error {
	ep, err := resolver.ResolveEndpoint(system, environment)
	if err != nil {
		return &configError{cause: err}
	}

	envelope, err := soap.Request{
		Operation: operation,
		Namespace: ep.Namespace,
		Payload:   payload,
	}.Envelope()
	if err != nil {
		return &configError{cause: err}
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "POST %s\nSOAPAction: %q\n\n", ep.URL, ep.SOAPAction)
	fmt.Fprintln(cmd.OutOrStdout(), string(envelope))
	return nil
}
