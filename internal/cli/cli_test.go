package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/aeat"
	"github.com/Mauro-Remeseiro/AEAT-Sender/pkg/soap"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"functional", &aeat.FunctionalError{Fault: &soap.Fault{Code: "Client", Message: "Invalid NIF"}}, ExitFunctional},
		{"communication", &aeat.CommunicationError{StatusCode: 503}, ExitCommunication},
		{"certificate", &aeat.CertificateError{}, ExitCertificate},
		{"dispatch config", &aeat.ConfigError{}, ExitConfig},
		{"config load", &configError{cause: errors.New("parsing config")}, ExitConfig},
		{"file", &fileError{cause: errors.New("reading payload")}, ExitFile},
		{"wrapped file", fmt.Errorf("outer: %w", &fileError{cause: errors.New("inner")}), ExitFile},
		{"unclassified", errors.New("unknown flag"), ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

// runCLI executes the root command with args, capturing stdout. Flag state
// is reset first because the command tree is shared across tests.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := `certificate:
  path: /etc/aeat/sello.p12
logging:
  level: error
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "aeat-sender")
	assert.Contains(t, out, "go version")
}

func TestSendDryRun(t *testing.T) {
	cfgPath := writeTestConfig(t)
	inputPath := filepath.Join(t.TempDir(), "factura.xml")
	payload := "<sii:RegistroLRFacturasEmitidas><NIF>B12345678</NIF></sii:RegistroLRFacturasEmitidas>"
	require.NoError(t, os.WriteFile(inputPath, []byte(payload), 0o644))

	out, err := runCLI(t, "send",
		"--config", cfgPath,
		"--system", "sii",
		"--environment", "testing",
		"--operation", "SuministroLRFacturasEmitidas",
		"--input", inputPath,
		"--dry-run",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "<soapenv:Envelope")
	assert.Contains(t, out, payload, "dry-run envelope must embed the payload verbatim")
}

func TestSendMissingInputFile(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := runCLI(t, "send",
		"--config", cfgPath,
		"--system", "sii",
		"--environment", "testing",
		"--operation", "SuministroLRFacturasEmitidas",
		"--input", filepath.Join(t.TempDir(), "missing.xml"),
		"--dry-run",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFile, ExitCode(err))
}

func TestSendMissingConfigFile(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "factura.xml")
	require.NoError(t, os.WriteFile(inputPath, []byte("<r/>"), 0o644))

	_, err := runCLI(t, "send",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--system", "sii",
		"--environment", "testing",
		"--operation", "SuministroLRFacturasEmitidas",
		"--input", inputPath,
	)
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestSendUnknownSystem(t *testing.T) {
	_, err := runCLI(t, "send",
		"--config", "config.yaml",
		"--system", "irpf",
		"--environment", "testing",
		"--operation", "Op",
		"--input", "factura.xml",
	)
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestSendRequiredFlags(t *testing.T) {
	_, err := runCLI(t, "send")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}
