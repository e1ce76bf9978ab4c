package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	exerr "github.com/msto63/exprkit/foundation/core/error"
	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/foundation/expr"
	"github.com/msto63/exprkit/foundation/expr/ast"
)

var (
	parseFormat string
	parseLegacy bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [statement]",
	Short: "Parse a statement and print its tree",
	Long: `Parses a statement and prints the resulting tree.

Formats:
  dump    constructor-style dump of the node types (default)
  render  fully parenthesized source form
  json    JSON object tree
  yaml    YAML object tree
  tree    indented tree view

Without arguments the statement is read from stdin.`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "dump", "output format: dump, render, json, yaml or tree")
	parseCmd.Flags().BoolVar(&parseLegacy, "legacy", false, "use the lenient legacy grammar")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}

	node, err := newEngine(parseLegacy).Parse(input)
	if err != nil {
		printCaret(input, err)
		return err
	}

	out, err := formatTree(node, parseFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, out)
	return nil
}

func newEngine(legacy bool) *expr.Engine {
	opts := expr.Options{
		Logger: exlog.GetDefault(),
		Mode:   parseMode(legacy),
	}
	if appConfig != nil {
		opts.MaxInputLength = appConfig.Parser.MaxInputLength
	}
	return expr.New(opts)
}

func formatTree(node ast.Node, format string) (string, error) {
	switch format {
	case "dump":
		return ast.Dump(node, 2), nil
	case "render":
		return ast.Render(node), nil
	case "json":
		data, err := json.MarshalIndent(ast.ToMap(node), "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "yaml":
		data, err := yaml.Marshal(ast.ToMap(node))
		if err != nil {
			return "", err
		}
		return string(data), nil
	case "tree":
		return pterm.DefaultTree.WithRoot(treeNode(node)).Srender()
	default:
		return "", exerr.Newf("unknown format %q", format).WithCode(exerr.CodeInvalidInput)
	}
}

// treeNode converts a tree into pterm's tree representation
func treeNode(n ast.Node) pterm.TreeNode {
	switch x := n.(type) {
	case *ast.Literal:
		return pterm.TreeNode{Text: fmt.Sprintf("%s %d", pterm.Cyan("Literal"), x.Value)}
	case *ast.Variable:
		return pterm.TreeNode{Text: fmt.Sprintf("%s %s", pterm.Cyan("Variable"), x.Name)}
	case *ast.BinaryOp:
		return pterm.TreeNode{
			Text:     fmt.Sprintf("%s %s", pterm.Cyan("BinaryOp"), x.Op.Symbol()),
			Children: []pterm.TreeNode{treeNode(x.Left), treeNode(x.Right)},
		}
	case *ast.Assignment:
		return pterm.TreeNode{
			Text:     fmt.Sprintf("%s %s", pterm.Cyan("Assignment"), x.Target),
			Children: []pterm.TreeNode{treeNode(x.Value)},
		}
	default:
		return pterm.TreeNode{Text: "None"}
	}
}
