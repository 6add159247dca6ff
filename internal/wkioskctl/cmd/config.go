package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wrale/wrale-kiosk/internal/wkioskctl/config"
	"github.com/wrale/wrale-kiosk/internal/wkioskctl/util"
)

// newConfigCmd creates the config command that manages CLI contexts.
// A context pairs a Content Service with the display client it feeds.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `The config command provides subcommands for managing wkioskctl's
contexts. Each context names a Content Service, its token, and the display
client whose local API the status and stats commands query.`,
	}

	cmd.AddCommand(
		newConfigGetContextCmd(),
		newConfigSetContextCmd(),
		newConfigDeleteContextCmd(),
		newConfigUseContextCmd(),
		newConfigViewCmd(),
	)

	return cmd
}

func sortedNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Contexts))
	for name := range cfg.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newConfigGetContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-context [name]",
		Short: "Display one or many contexts",
		Example: `  # List all contexts
  wkioskctl config get-context

  # Show details for a specific context
  wkioskctl config get-context lobby`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := util.LoadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				tw := util.NewTabWriter(out)
				fmt.Fprintf(tw, "CURRENT\tNAME\tSERVER\tDISPLAY\n")
				for _, name := range sortedNames(cfg) {
					ctx := cfg.Contexts[name]
					current := ""
					if name == cfg.CurrentContext {
						current = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", current, name, ctx.Server, ctx.Display)
				}
				return tw.Flush()
			}

			ctx, ok := cfg.GetContext(args[0])
			if !ok {
				return fmt.Errorf("context %q not found", args[0])
			}

			fmt.Fprintf(out, "Name: %s\n", ctx.Name)
			fmt.Fprintf(out, "Server: %s\n", ctx.Server)
			if ctx.Display != "" {
				fmt.Fprintf(out, "Display: %s\n", ctx.Display)
			}
			fmt.Fprintf(out, "Insecure Skip Verify: %v\n", ctx.InsecureSkipVerify)
			if ctx.Token != "" {
				fmt.Fprintf(out, "Token: %s\n", util.MaskToken(ctx.Token))
			}
			return nil
		},
	}
}

func newConfigSetContextCmd() *cobra.Command {
	var (
		server          string
		display         string
		token           string
		insecureSkipTLS bool
	)

	cmd := &cobra.Command{
		Use:   "set-context NAME",
		Short: "Create or update a context",
		Long: `Create a new context or update an existing one.

Creating a context requires --server. When updating, only the flags given
are changed. The first context created becomes the current one.`,
		Example: `  # Create a context for a local stack
  wkioskctl config set-context dev --server=http://localhost:4000/api

  # Point the lobby context at its display and add a token
  wkioskctl config set-context lobby --display=http://10.0.0.12:8081 --token=mytoken`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			cfg, err := util.LoadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, exists := cfg.GetContext(name)
			if !exists {
				if server == "" {
					return fmt.Errorf("server URL is required")
				}
				ctx = &config.Context{}
			}

			flags := cmd.Flags()
			if flags.Changed("server") {
				ctx.Server = server
			}
			if flags.Changed("display") {
				ctx.Display = display
			}
			if flags.Changed("token") {
				ctx.Token = token
			}
			if flags.Changed("insecure-skip-tls") {
				ctx.InsecureSkipVerify = insecureSkipTLS
			}

			cfg.AddContext(name, ctx)
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q updated\n", ctx.Name)
			return nil
		},
	}

	// Local flags shadow the global --server, --display and --token
	cmd.Flags().StringVar(&server, "server", "", "Content Service API root")
	cmd.Flags().StringVar(&display, "display", "", "Display client local API address")
	cmd.Flags().StringVar(&token, "token", "", "Content Service bearer token")
	cmd.Flags().BoolVar(&insecureSkipTLS, "insecure-skip-tls", false, "Skip TLS certificate verification")

	return cmd
}

func newConfigDeleteContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-context NAME",
		Short: "Delete a context",
		Long: `Delete a context from the configuration.

Deleting the current context leaves no context selected.`,
		Example: `  # Delete the 'staging' context
  wkioskctl config delete-context staging`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := util.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RemoveContext(args[0]); err != nil {
				return fmt.Errorf("error removing context: %w", err)
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted\n", args[0])
			return nil
		},
	}
}

func newConfigUseContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-context NAME",
		Short: "Switch to a different context",
		Example: `  # Switch to the production context
  wkioskctl config use-context production`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := util.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.SetCurrentContext(args[0]); err != nil {
				return fmt.Errorf("error setting current context: %w", err)
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", cfg.CurrentContext)
			return nil
		},
	}
}

func newConfigViewCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Display the configuration",
		Long: `Display every context and which one is active. Tokens are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := util.LoadConfig(cmd)
			if err != nil {
				return err
			}

			// mask tokens on a copy
			masked := &config.Config{
				CurrentContext: cfg.CurrentContext,
				Contexts:       make(map[string]*config.Context, len(cfg.Contexts)),
			}
			for name, ctx := range cfg.Contexts {
				c := *ctx
				c.Token = util.MaskToken(c.Token)
				masked.Contexts[name] = &c
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(outputFormat) {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(masked); err != nil {
					return err
				}
				return enc.Close()
			case "text", "":
				fmt.Fprintf(out, "Config: %s\n", cfg.Path())
				fmt.Fprintf(out, "Current Context: %s\n\n", masked.CurrentContext)
				fmt.Fprintf(out, "Contexts:\n")
				for _, name := range sortedNames(masked) {
					ctx := masked.Contexts[name]
					fmt.Fprintf(out, "- %s:\n", name)
					fmt.Fprintf(out, "    Server: %s\n", ctx.Server)
					if ctx.Display != "" {
						fmt.Fprintf(out, "    Display: %s\n", ctx.Display)
					}
					fmt.Fprintf(out, "    InsecureSkipVerify: %v\n", ctx.InsecureSkipVerify)
					if ctx.Token != "" {
						fmt.Fprintf(out, "    Token: %s\n", ctx.Token)
					}
				}
				return nil
			default:
				return fmt.Errorf("invalid output format %q - use text or yaml", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format (text, yaml)")

	return cmd
}
