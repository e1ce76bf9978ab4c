package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr/parser"
	"github.com/msto63/exprkit/pkg/core/config"
	"github.com/msto63/exprkit/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	levelVar  *exlog.LevelVar
)

var rootCmd = &cobra.Command{
	Use:   "exprkit",
	Short: "exprkit - Integer expression toolkit",
	Long: `exprkit tokenizes, parses and evaluates integer expressions with
variables, the four arithmetic operators, parentheses and assignment.

Examples:
  exprkit parse "x = (1 + 2) * y"
  exprkit eval --set y=4 "(1 + 2) * y"
  exprkit repl
  exprkit serve`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: discovered, see EXPRKIT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads the configuration and installs the default logger. One-shot
// commands only log errors unless --verbose is given.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	level := "error"
	if verbose {
		level = "debug"
	}
	levelVar = exlog.NewLevelVar(logging.ParseLevel(level))
	exlog.SetDefault(logging.NewLogger(logging.LoggerConfig{
		ServiceName: "exprkit",
		Level:       level,
		Format:      "console",
		LevelVar:    levelVar,
	}))
	return nil
}

// readInput joins the arguments, or reads stdin when there are none
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// parseMode returns the configured mode, or legacy when forced
func parseMode(legacy bool) parser.Mode {
	if legacy {
		return parser.ModeLegacy
	}
	if appConfig == nil {
		return parser.ModeStrict
	}
	return appConfig.ParseMode()
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if e, ok := exerr.As(err); ok && e.Code() != exerr.CodeUnknown {
		fmt.Fprintf(os.Stderr, "code:  %s\n", e.Code())
	}
}

// printCaret points at the failing position of a parse error
func printCaret(input string, err error) {
	pos := parser.Position(err)
	if pos < 0 || strings.ContainsAny(input, "\n\t") {
		return
	}
	runes := []rune(input)
	if pos > len(runes) {
		pos = len(runes)
	}
	fmt.Fprintf(os.Stderr, "  %s\n  %s^\n", input, strings.Repeat(" ", pos))
}
