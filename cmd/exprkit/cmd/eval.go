package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	evalDB      string
	evalPersist bool
	evalSet     []string
	evalLegacy  bool
)

var evalCmd = &cobra.Command{
	Use:   "eval [statement]",
	Short: "Evaluate a statement",
	Long: `Evaluates a statement and prints its value. Assignments print the
assigned variable as well.

Variables live in memory unless --db (or --persist, which uses the store
path from the configuration) names a SQLite database.`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalDB, "db", "", "SQLite database for persistent variables")
	evalCmd.Flags().BoolVar(&evalPersist, "persist", false, "use the configured store")
	evalCmd.Flags().StringArrayVar(&evalSet, "set", nil, "set a variable before evaluating (name=value, repeatable)")
	evalCmd.Flags().BoolVar(&evalLegacy, "legacy", false, "use the lenient legacy grammar")
}

func runEval(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}

	dbPath := evalDB
	if dbPath == "" && evalPersist {
		dbPath = appConfig.Store.Path
	}

	svc, cleanup, err := newLocalService(dbPath, evalLegacy)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := context.Background()
	for _, s := range evalSet {
		name, value, err := parseAssignment(s)
		if err != nil {
			return err
		}
		if err := svc.SetVariable(ctx, name, value); err != nil {
			return err
		}
	}

	res, err := svc.Evaluate(ctx, input)
	if err != nil {
		printCaret(input, err)
		return err
	}

	if res.Assigned != "" {
		fmt.Fprintf(os.Stdout, "%s = %d\n", res.Assigned, res.Value)
		return nil
	}
	fmt.Fprintln(os.Stdout, res.Value)
	return nil
}
