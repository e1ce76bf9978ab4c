package cmd

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens [input]",
	Short: "Print the token stream of the input",
	RunE:  runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	input, err := readInput(args)
	if err != nil {
		return err
	}

	tokens, err := newEngine(false).Tokenize(input)
	if err != nil {
		printCaret(input, err)
		return err
	}

	data := pterm.TableData{{"Pos", "Kind", "Text"}}
	for _, tok := range tokens {
		data = append(data, []string{strconv.Itoa(tok.Position), tok.Kind.String(), tok.Text()})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
