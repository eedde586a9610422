package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescope/internal/assistant"
	"github.com/nao1215/sitescope/internal/config"
)

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant about an analysis report",
		Long: `Ask sends a question, together with a JSON report produced by
"sitescope analyze --json", to the Gemini generateContent API and prints
the answer.

GEMINI_API_KEY must be set in the environment or in the .env file.

Examples:
  sitescope analyze --json https://example.com -o report.json
  sitescope ask --report report.json "¿Qué debo corregir primero?"

  # Read the report from stdin
  sitescope analyze --json https://example.com | sitescope ask -r - "¿Es seguro?"`,
		Args: cobra.ArbitraryArgs,
		RunE: runAskCmd,
	}

	cmd.Flags().StringP("report", "r", "",
		`JSON report file, or "-" for stdin (default: empty analysis)`)
	cmd.Flags().Duration("timeout", config.DefaultAssistantTimeout,
		"Timeout for the assistant request")

	return cmd
}

// runAskCmd executes the ask command.
func runAskCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.AssistantTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		return err
	}
	data, err := readReport(reportPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	logger := setupLogger(cfg, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	client := assistant.NewClientFromConfig(cfg, logger, nil)
	reply := client.Ask(ctx, assistant.Request{
		Question:     strings.Join(args, " "),
		AnalysisData: data,
	})

	fmt.Fprintln(cmd.OutOrStdout(), reply.Response)
	if reply.StatusCode != http.StatusOK {
		if reply.Err != nil {
			return fmt.Errorf("assistant request failed (%d %s): %w",
				reply.StatusCode, http.StatusText(reply.StatusCode), reply.Err)
		}
		return fmt.Errorf("assistant request failed (%d %s)",
			reply.StatusCode, http.StatusText(reply.StatusCode))
	}
	return nil
}

// readReport loads the report JSON from path, stdin for "-", or nothing.
func readReport(path string, stdin io.Reader) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path) //nolint:gosec // User-provided report path is intentional
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("report is not valid JSON: %s", path)
	}
	return data, nil
}
