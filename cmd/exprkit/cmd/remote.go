package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	exlog "github.com/msto63/exprkit/foundation/core/log"
	"github.com/msto63/exprkit/internal/client"
	"github.com/msto63/exprkit/pkg/core/logging"
)

var (
	remoteAddr    string
	remoteTimeout time.Duration
	remoteFormat  string
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Talk to a running exprkit server over gRPC",
}

var remoteParseCmd = &cobra.Command{
	Use:   "parse [statement]",
	Short: "Parse on the server",
	RunE: withClient(func(ctx context.Context, c *client.Client, input string) error {
		res, err := c.Parse(ctx, input)
		if err != nil {
			return err
		}
		out, err := formatTree(res.Tree, remoteFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	}),
}

var remoteEvalCmd = &cobra.Command{
	Use:   "eval [statement]",
	Short: "Evaluate on the server",
	RunE: withClient(func(ctx context.Context, c *client.Client, input string) error {
		res, err := c.Evaluate(ctx, input)
		if err != nil {
			return err
		}
		if res.Assigned != "" {
			fmt.Fprintf(os.Stdout, "%s = %d\n", res.Assigned, res.Value)
			return nil
		}
		fmt.Fprintln(os.Stdout, res.Value)
		return nil
	}),
}

var remoteTokensCmd = &cobra.Command{
	Use:   "tokens [input]",
	Short: "Tokenize on the server",
	RunE: withClient(func(ctx context.Context, c *client.Client, input string) error {
		tokens, err := c.Tokenize(ctx, input)
		if err != nil {
			return err
		}
		data := pterm.TableData{{"Pos", "Kind", "Text"}}
		for _, tok := range tokens {
			data = append(data, []string{strconv.Itoa(tok.Position), tok.Kind, tok.Text})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}),
}

var remoteVarsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List the server's variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dialRemote()
		if err != nil {
			return err
		}
		defer c.Close()

		vars, err := c.Variables(context.Background())
		if err != nil {
			return err
		}
		names := make([]string, 0, len(vars))
		for name := range vars {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(os.Stdout, "%s = %d\n", name, vars[name])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remoteCmd)
	remoteCmd.PersistentFlags().StringVar(&remoteAddr, "addr", "", "server address (default: from config)")
	remoteCmd.PersistentFlags().DurationVar(&remoteTimeout, "timeout", 10*time.Second, "per-call timeout")
	remoteParseCmd.Flags().StringVarP(&remoteFormat, "format", "f", "render", "output format: dump, render, json, yaml or tree")

	remoteCmd.AddCommand(remoteParseCmd, remoteEvalCmd, remoteTokensCmd, remoteVarsCmd)
}

func dialRemote() (*client.Client, error) {
	addr := remoteAddr
	if addr == "" {
		addr = appConfig.GRPCAddress()
	}
	return client.New(client.Config{
		Address: addr,
		Timeout: remoteTimeout,
		Logger:  logging.Wrap(exlog.GetDefault()),
	})
}

// withClient reads the input, dials the server and runs fn
func withClient(fn func(context.Context, *client.Client, string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		input, err := readInput(args)
		if err != nil {
			return err
		}
		c, err := dialRemote()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := fn(context.Background(), c, input); err != nil {
			printCaret(input, err)
			return err
		}
		return nil
	}
}
