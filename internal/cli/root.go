// Package cli implements the aeat-sender command line interface: argument
// parsing, logging setup and the mapping of dispatch outcomes onto
// category-distinct exit codes so scripted callers can branch without
// parsing text.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/aeat"
)

// Exit codes. Automation depends on these staying stable: the layout is the
// one the tool has always used, with certificate failures split out from
// communication failures so every error category is distinguishable.
const (
	ExitSuccess       = 0
	ExitUsage         = 1
	ExitConfig        = 2
	ExitFile          = 3
	ExitCommunication = 4
	ExitFunctional    = 5
	ExitCertificate   = 6
)

// fileError marks a failure reading the payload or writing the response.
type fileError struct {
	cause error
}

func (e *fileError) Error() string { return e.cause.Error() }
func (e *fileError) Unwrap() error { return e.cause }

// configError marks a failure loading or applying the configuration file.
type configError struct {
	cause error
}

func (e *configError) Error() string { return e.cause.Error() }
func (e *configError) Unwrap() error { return e.cause }

var rootCmd = &cobra.Command{
	Use:   "aeat-sender",
	Short: "Envío de XML a los servicios SOAP de la AEAT (SII y VeriFactu)",
	Long: `aeat-sender submits pre-built XML payloads to the Spanish tax agency's
SOAP web services: SII (periodic ledger reporting) and VeriFactu (real-time
invoice verification). Authentication uses a client certificate from a
PKCS#12 bundle.

The exit code reports the outcome category:

  0  AEAT accepted the submission
  1  invalid arguments
  2  configuration error
  3  payload or response file error
  4  communication failure (network, TLS, unreadable reply)
  5  AEAT rejected the submission with a SOAP Fault
  6  certificate error (unreadable bundle, wrong passphrase)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	code := ExitCode(err)
	if code == ExitUsage && cmd != nil {
		// Flag and argument errors get the usage text; classified
		// failures already explained themselves.
		fmt.Fprintln(os.Stderr, cmd.UsageString())
	}
	return code
}

// ExitCode maps an error onto its exit code. Errors carrying no recognized
// category are argument errors: every failure past argument parsing is
// wrapped in a classified type before it reaches here.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		functional    *aeat.FunctionalError
		communication *aeat.CommunicationError
		certificate   *aeat.CertificateError
		dispatchCfg   *aeat.ConfigError
		file          *fileError
		config        *configError
	)
	switch {
	case errors.As(err, &functional):
		return ExitFunctional
	case errors.As(err, &communication):
		return ExitCommunication
	case errors.As(err, &certificate):
		return ExitCertificate
	case errors.As(err, &dispatchCfg), errors.As(err, &config):
		return ExitConfig
	case errors.As(err, &file):
		return ExitFile
	default:
		return ExitUsage
	}
}
