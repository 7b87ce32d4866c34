package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wippyai/enginewrap/wrap"
)

var callNOut int

var evalCmd = &cobra.Command{
	Use:   "eval <statement>...",
	Short: "Evaluate statements and print the engine output",
	Example: `  enginesh eval "x = 1 + 2"
  enginesh eval "a = [3 1 2];" "disp(sort(a))"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *wrap.Session) error {
			for _, stmt := range args {
				if err := evalStatement(ctx, s, stmt, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var callCmd = &cobra.Command{
	Use:   "call <function> [arg]...",
	Short: "Call an engine function with converted arguments",
	Long: `Call resolves the function, converts every argument and prints the
result. Arguments use the declared parameter types when the function has
a signature. Otherwise numbers, complex numbers, true, false and
bracketed matrices such as "[1 2; 3 4]" are recognised and everything
else is passed as a string.`,
	Example: `  enginesh call sort "[3 1 2]"
  enginesh call --nout 2 sort "[3 1 2]"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []wrap.CallOption
		if cmd.Flags().Changed("nout") {
			opts = append(opts, wrap.NOut(callNOut))
		}
		return withSession(cmd.Context(), func(ctx context.Context, s *wrap.Session) error {
			return callFunction(ctx, s, args[0], args[1:], cmd.OutOrStdout(), opts...)
		})
	},
}

var docCmd = &cobra.Command{
	Use:     "doc <function>",
	Short:   "Print the engine documentation of a function",
	Example: `  enginesh doc sort`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *wrap.Session) error {
			c, err := s.Command(ctx, args[0])
			if err != nil {
				return err
			}
			printDescriptor(cmd.OutOrStdout(), c)
			return nil
		})
	},
}

var whoCmd = &cobra.Command{
	Use:   "who",
	Short: "List the engine workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(ctx context.Context, s *wrap.Session) error {
			names, err := s.Workspace(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		})
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive shell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd.Context())
	},
}

func init() {
	callCmd.Flags().IntVarP(&callNOut, "nout", "n", 1, "number of outputs to request; 0 calls as a procedure")
}

func withSession(ctx context.Context, fn func(context.Context, *wrap.Session) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, _, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close(ctx)
	return fn(ctx, s)
}

// evalStatement evaluates stmt as written and copies the engine output to w.
func evalStatement(ctx context.Context, s *wrap.Session, stmt string, w io.Writer) error {
	_, err := s.Do(ctx, stmt, nil, wrap.NOut(0), wrap.Output(func(out string) {
		io.WriteString(w, out)
	}))
	return err
}

// callFunction calls name with texts converted to host values and prints
// the result. Proxies in the result are released once printed.
func callFunction(ctx context.Context, s *wrap.Session, name string, texts []string, w io.Writer, opts ...wrap.CallOption) error {
	c, err := s.Command(ctx, name)
	if err != nil {
		return err
	}
	args, err := callArgs(c, texts)
	if err != nil {
		return err
	}
	opts = append(opts, wrap.Output(func(out string) { io.WriteString(w, out) }))
	res, err := c.CallWith(ctx, args, opts...)
	if err != nil {
		return err
	}
	if text := formatResult(ctx, res); text != "" {
		fmt.Fprintln(w, text)
	}
	releaseProxies(ctx, res)
	return nil
}

func releaseProxies(ctx context.Context, res any) {
	switch v := res.(type) {
	case *wrap.Proxy:
		v.Close(ctx)
	case []any:
		for _, e := range v {
			releaseProxies(ctx, e)
		}
	}
}

func printDescriptor(w io.Writer, c *wrap.Command) {
	d := c.Descriptor()
	fmt.Fprintf(w, "%s (%s, via %s)\n", d.Name, d.Kind, d.Source)
	if len(d.Params) > 0 || len(d.Results) > 0 {
		fmt.Fprintf(w, "  %s\n", signatureText(c))
	} else {
		fmt.Fprintf(w, "  inputs: %d, outputs: %d\n", d.NIn, d.NOut)
	}
	if doc := strings.TrimSpace(c.Doc()); doc != "" {
		fmt.Fprintf(w, "\n%s\n", doc)
	}
}

func signatureText(c *wrap.Command) string {
	d := c.Descriptor()
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = witTypeStr(p)
	}
	results := make([]string, len(d.Results))
	for i, r := range d.Results {
		results[i] = witTypeStr(r)
	}
	text := d.Name + "(" + strings.Join(params, ", ") + ")"
	switch len(results) {
	case 0:
	case 1:
		text += " -> " + results[0]
	default:
		text += " -> (" + strings.Join(results, ", ") + ")"
	}
	return text
}
