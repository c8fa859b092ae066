// Command callsim drives the dialog engine from typed or scripted caller
// lines, printing each spoken reply. It needs no telephony account.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/room4-2/OrderDesk/catalog"
	"github.com/room4-2/OrderDesk/dialog"
	"github.com/room4-2/OrderDesk/messages"
	"github.com/room4-2/OrderDesk/session"
	"github.com/room4-2/OrderDesk/speech"
)

var (
	catalogFile string
	scriptFile  string
	callID      string
	jsonOutput  bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "callsim",
	Short: "Simulate an order-support call against the dialog engine",
	Long: `callsim plays one call through the dialog engine. Each input line is
one caller utterance; an empty line is silence. The call ends when the
engine hangs up or the input runs out.

Example:
  printf 'one two three\nreturn\nno\nno\nno\nyes\n' | callsim --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := zap.NewNop()
		if verbose {
			l, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			defer func() { _ = logger.Sync() }()
		}

		in := cmd.InOrStdin()
		if scriptFile != "" {
			f, err := os.Open(scriptFile)
			if err != nil {
				return fmt.Errorf("failed to open script: %w", err)
			}
			defer f.Close()
			in = f
		}

		cat, offers, err := catalog.Load(catalogFile)
		if err != nil {
			return err
		}
		return simulate(cmd.Context(), in, cmd.OutOrStdout(), cat, offers, logger)
	},
}

func init() {
	rootCmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog YAML file (default: built-in catalog)")
	rootCmd.Flags().StringVarP(&scriptFile, "script", "s", "", "read caller lines from a file instead of stdin")
	rootCmd.Flags().StringVar(&callID, "call-id", "SIM-1", "call id to use")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print each action as JSON")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log engine decisions")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// simulate runs a single call, one input line per turn
func simulate(ctx context.Context, in io.Reader, out io.Writer, cat *catalog.Catalog, offers *catalog.Offers, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store := session.NewStore(time.Hour, nil, logger)
	defer store.Shutdown()
	engine := dialog.NewEngine(cat, offers, speech.NewClassifier(), store, logger)

	action := engine.Start(ctx, callID)
	if err := printAction(out, "", action); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for !action.Hangup && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		action = engine.Handle(ctx, dialog.Turn{
			CallID:         callID,
			Transcript:     line,
			RequestedStage: action.NextStage,
			Seq:            action.Turn,
		})
		if err := printAction(out, line, action); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	if !action.Hangup {
		_, err := fmt.Fprintln(out, "(caller hung up)")
		return err
	}
	return nil
}

func printAction(out io.Writer, caller string, a *messages.Action) error {
	if jsonOutput {
		data, err := sonic.Marshal(a)
		if err != nil {
			return fmt.Errorf("failed to encode action: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	if caller != "" {
		if _, err := fmt.Fprintf(out, "caller: %s\n", caller); err != nil {
			return err
		}
	}
	line := fmt.Sprintf("agent:  %s", a.Speak)
	if a.Hangup {
		line += fmt.Sprintf(" [hangup: %s]", a.Disposition)
	} else {
		line += fmt.Sprintf(" [%s, %s]", a.NextStage, a.Reason)
	}
	_, err := fmt.Fprintln(out, line)
	return err
}
