package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/core/diagram"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for entitymap.

To load completions:

Bash:
  $ source <(entitymap completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ entitymap completion bash > /etc/bash_completion.d/entitymap
  # macOS:
  $ entitymap completion bash > $(brew --prefix)/etc/bash_completion.d/entitymap

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ entitymap completion zsh > "${fpath[1]}/_entitymap"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ entitymap completion fish | source

  # To load completions for each session, execute once:
  $ entitymap completion fish > ~/.config/fish/completions/entitymap.fish

PowerShell:
  PS> entitymap completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> entitymap completion powershell > entitymap.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}

// completeClasses offers catalog class IDs, each with its description. It
// reads the catalog named by --catalog or the config, since completion runs
// without the root's setup hook.
func (c *CLI) completeClasses(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if len(args) > 0 && cmd.Name() == "show" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	c.Config = cfg
	cat, err := c.loadCatalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []cobra.Completion
	for _, cl := range cat.Classes() {
		if strings.HasPrefix(cl.ID, toComplete) {
			out = append(out, cobra.CompletionWithDesc(cl.ID, cl.Description))
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// registerCompletions wires value completion for flags that take a fixed
// vocabulary or a class ID.
func (c *CLI) registerCompletions(root *cobra.Command) {
	_ = root.RegisterFlagCompletionFunc("resolve",
		cobra.FixedCompletions([]cobra.Completion{diagram.ModeID, diagram.ModeShortName}, cobra.ShellCompDirectiveNoFileComp))
	_ = root.RegisterFlagCompletionFunc("catalog", func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return []cobra.Completion{"toml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "render":
			_ = sub.RegisterFlagCompletionFunc("root", c.completeClasses)
			_ = sub.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
				// Comma-separated lists complete the last element.
				prefix := ""
				if i := strings.LastIndex(toComplete, ","); i >= 0 {
					prefix = toComplete[:i+1]
				}
				out := make([]cobra.Completion, 0, len(validFormats))
				for _, f := range validFormats {
					out = append(out, prefix+f)
				}
				return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
			})
		case "catalog":
			for _, cc := range sub.Commands() {
				if cc.Name() == "show" {
					cc.ValidArgsFunction = c.completeClasses
				}
			}
		}
	}
}
