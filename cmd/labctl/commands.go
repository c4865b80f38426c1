package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/GoSim-25-26J-441/labplan/internal/app"
	"github.com/GoSim-25-26J-441/labplan/internal/server"
	"github.com/GoSim-25-26J-441/labplan/internal/tools"
	"github.com/GoSim-25-26J-441/labplan/pkg/config"
	"github.com/GoSim-25-26J-441/labplan/pkg/logger"
)

type options struct {
	configPath string
	remote     string
	jsonOut    bool
	timeout    time.Duration
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "labctl",
		Short:         "Plan and validate liquid-handling runs",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config for in-process calls")
	root.PersistentFlags().StringVar(&opts.remote, "remote", "", "gRPC address of a labplan daemon (in-process when empty)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print the structured result as JSON")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "per-call timeout")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for in-process calls")

	root.AddCommand(newToolsCmd(opts), newCallCmd(opts))
	return root
}

func newToolsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List available tools and their arguments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			list, err := listTools(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"tools": list})
			}
			return printTools(cmd.OutOrStdout(), list)
		},
	}
}

func newCallCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "call <tool> [key=value...]",
		Short: "Call a tool and print its report",
		Example: `  labctl call check_deck_layout spec=1:corning_96_wellplate_360ul_flat,2:nest_12_reservoir_15ml
  labctl call simulate_protocol aspiration_speed=50 dispense_speed=50 mix_volume=100 mix_repetitions=3 transfer_volume=200
  labctl --remote localhost:50051 call optimize_parameters speed_range=20,50,100`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs, err := parseKeyValues(args[1:])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := callTool(ctx, opts, args[0], callArgs, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			text, _ := res["text"].(string)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}

// parseKeyValues turns key=value words into tool arguments
func parseKeyValues(words []string) (tools.Args, error) {
	args := make(tools.Args, len(words))
	for _, w := range words {
		key, value, ok := strings.Cut(w, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("argument %q is not key=value", w)
		}
		args[strings.TrimSpace(key)] = value
	}
	return args, nil
}

func localRegistry(opts *options, stderr io.Writer) (*tools.Registry, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	l := logger.NewText(opts.logLevel, stderr)
	logger.SetDefault(l)
	return app.NewRegistry(cfg, l)
}

func dialRemote(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, nil
}

// callTool returns the result envelope {call_id, tool, text, data}
func callTool(ctx context.Context, opts *options, name string, args tools.Args, stderr io.Writer) (map[string]any, error) {
	if opts.remote == "" {
		reg, err := localRegistry(opts, stderr)
		if err != nil {
			return nil, err
		}
		res, err := reg.Call(ctx, name, args)
		if err != nil {
			return nil, err
		}
		return toMap(res)
	}

	conn, err := dialRemote(opts.remote)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raw := make(map[string]any, len(args))
	for k, v := range args {
		raw[k] = v
	}
	out, err := server.NewToolServiceClient(conn).CallTool(ctx, name, raw)
	if err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func listTools(ctx context.Context, opts *options, stderr io.Writer) ([]map[string]any, error) {
	var list []any
	if opts.remote == "" {
		reg, err := localRegistry(opts, stderr)
		if err != nil {
			return nil, err
		}
		m, err := toMap(map[string]any{"tools": reg.List()})
		if err != nil {
			return nil, err
		}
		list, _ = m["tools"].([]any)
	} else {
		conn, err := dialRemote(opts.remote)
		if err != nil {
			return nil, err
		}
		defer conn.Close()

		out, err := server.NewToolServiceClient(conn).ListTools(ctx)
		if err != nil {
			return nil, err
		}
		list, _ = out.AsMap()["tools"].([]any)
	}

	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return fmt.Sprint(out[i]["name"]) < fmt.Sprint(out[j]["name"])
	})
	return out, nil
}

func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTools(w io.Writer, list []map[string]any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tARGUMENTS\tDESCRIPTION")
	for _, t := range list {
		var params []string
		if ps, ok := t["params"].([]any); ok {
			for _, p := range ps {
				pm, _ := p.(map[string]any)
				name := fmt.Sprint(pm["name"])
				if req, _ := pm["required"].(bool); !req {
					name = "[" + name + "]"
				}
				params = append(params, name)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t["name"], strings.Join(params, " "), t["description"])
	}
	return tw.Flush()
}
