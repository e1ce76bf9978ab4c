package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/msto63/exprkit/foundation/expr/ast"
	"github.com/msto63/exprkit/internal/service"
)

var (
	replDB     string
	replLegacy bool
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Line-oriented interactive evaluator",
	Long: `Starts a read-eval-print loop with line editing and history.

Commands:
  :vars   list variables
  :ast    toggle printing the tree of each statement
  :clear  remove all variables
  :help   show this help
  :quit   leave (Ctrl+D works too)`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replDB, "db", "", "SQLite database for persistent variables")
	replCmd.Flags().BoolVar(&replLegacy, "legacy", false, "use the lenient legacy grammar")
}

func runRepl(cmd *cobra.Command, args []string) error {
	svc, cleanup, err := newLocalService(replDB, replLegacy)
	if err != nil {
		return err
	}
	defer cleanup()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	historyFile := replHistoryFile()
	if f, err := os.Open(historyFile); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	prompt := appConfig.TUI.Prompt
	showTree := appConfig.TUI.ShowTree
	ctx := context.Background()

	fmt.Printf("exprkit repl (%s mode), :help for commands\n", svc.Mode())
	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		switch line {
		case ":quit", ":q":
			return nil
		case ":help":
			fmt.Println(cmd.Long)
			continue
		case ":ast":
			showTree = !showTree
			fmt.Printf("tree output %s\n", onOff(showTree))
			continue
		case ":vars":
			printVariables(ctx, svc)
			continue
		case ":clear":
			n, err := svc.ClearVariables(ctx)
			if err != nil {
				printError(err)
				continue
			}
			fmt.Printf("removed %d variables\n", n)
			continue
		}

		res, err := svc.Evaluate(ctx, line)
		if err != nil {
			printCaret(line, err)
			printError(err)
			continue
		}
		if showTree {
			fmt.Println(ast.Dump(res.Tree, 2))
		}
		if res.Assigned != "" {
			fmt.Printf("%s = %d\n", res.Assigned, res.Value)
		} else {
			fmt.Println(res.Value)
		}
	}
}

func printVariables(ctx context.Context, svc *service.Service) {
	vars, err := svc.Variables(ctx)
	if err != nil {
		printError(err)
		return
	}
	if len(vars) == 0 {
		fmt.Println("no variables")
		return
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s = %d\n", name, vars[name])
	}
}

func replHistoryFile() string {
	if appConfig.TUI.HistoryFile != "" {
		return appConfig.TUI.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".exprkit_history"
	}
	return filepath.Join(home, ".exprkit_history")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
