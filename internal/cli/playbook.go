package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trade-journal/internal/models"
)

// addPlaybookCommands adds playbook management commands.
func addPlaybookCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "playbook",
		Aliases: []string{"pb"},
		Short:   "Manage trading playbooks",
		Long: `Playbooks are saved setups: the market conditions they suit, an entry
checklist, exit rules and risk rules. The active playbook is attached to
new trades by default.`,
	}

	cmd.AddCommand(newPlaybookAddCmd(app))
	cmd.AddCommand(newPlaybookListCmd(app))
	cmd.AddCommand(newPlaybookShowCmd(app))
	cmd.AddCommand(newPlaybookEditCmd(app))
	cmd.AddCommand(newPlaybookDeleteCmd(app))
	cmd.AddCommand(newPlaybookActivateCmd(app))

	rootCmd.AddCommand(cmd)
}

func addPlaybookFlags(cmd *cobra.Command) {
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("category", "", "Category (e.g. momentum, reversal)")
	cmd.Flags().StringSlice("condition", nil, "Market condition (repeatable)")
	cmd.Flags().StringSlice("check", nil, "Setup checklist item (repeatable)")
	cmd.Flags().StringSlice("exit-rule", nil, "Exit rule (repeatable)")
	cmd.Flags().StringSlice("risk-rule", nil, "Risk rule (repeatable)")
	cmd.Flags().StringSlice("screenshot", nil, "Screenshot reference (repeatable)")
}

func newPlaybookAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a playbook",
		Example: `  journal playbook add "Opening range breakout" --category momentum \
    --check "volume above average" --exit-rule "trail under VWAP" --risk-rule "max 1% per trade"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()
			flags := cmd.Flags()

			in := models.PlaybookInput{Name: args[0]}
			in.Description, _ = flags.GetString("description")
			in.Category, _ = flags.GetString("category")
			in.MarketConditions, _ = flags.GetStringSlice("condition")
			in.SetupChecklist, _ = flags.GetStringSlice("check")
			in.ExitRules, _ = flags.GetStringSlice("exit-rule")
			in.RiskRules, _ = flags.GetStringSlice("risk-rule")
			in.Screenshots, _ = flags.GetStringSlice("screenshot")

			p, err := app.Journal.AddPlaybook(ctx, in)
			if err != nil {
				output.Error("Failed to create playbook: %v", err)
				return err
			}
			if activate, _ := flags.GetBool("activate"); activate {
				if err := app.Journal.ActivatePlaybook(ctx, p.ID); err != nil {
					return err
				}
			}
			if output.IsJSON() {
				return output.JSON(p)
			}
			output.Success("✓ Playbook %q created (%s)", p.Name, p.ID)
			return nil
		},
	}
	addPlaybookFlags(cmd)
	cmd.Flags().Bool("activate", false, "Make this the active playbook")
	return cmd
}

func newPlaybookListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playbooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			playbooks, active := app.Journal.Playbooks()
			if output.IsJSON() {
				if playbooks == nil {
					playbooks = []models.Playbook{}
				}
				return output.JSON(map[string]interface{}{"playbooks": playbooks, "active_id": active})
			}
			if len(playbooks) == 0 {
				output.Info("No playbooks yet. Create one with 'journal playbook add'.")
				return nil
			}

			table := NewTable(output, "", "ID", "Name", "Category", "Version", "Updated")
			for _, p := range playbooks {
				marker := ""
				if p.ID == active {
					marker = output.Green("*")
				}
				table.AddRow(marker, p.ID, p.Name, orDash(p.Category), fmt.Sprintf("v%d", p.Version),
					FormatDate(p.LastUpdated, app.Config.UI.DateFormat))
			}
			table.Render()
			return nil
		},
	}
}

func newPlaybookShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [playbook-id]",
		Short: "Show a playbook (default: the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var p models.Playbook
			if len(args) == 1 {
				var err error
				if p, err = app.Journal.GetPlaybook(args[0]); err != nil {
					output.Error("%v", err)
					return err
				}
			} else {
				var ok bool
				if p, ok = app.Journal.ActivePlaybook(); !ok {
					return fmt.Errorf("no active playbook; pass a playbook id")
				}
			}
			if output.IsJSON() {
				return output.JSON(p)
			}

			output.Bold("%s (v%d)", p.Name, p.Version)
			if p.Description != "" {
				output.Printf("  %s\n", p.Description)
			}
			output.Dim("  %s, updated %s", p.ID, FormatDate(p.LastUpdated, app.Config.UI.DateFormat))
			printList(output, "Market Conditions", p.MarketConditions)
			printList(output, "Setup Checklist", p.SetupChecklist)
			printList(output, "Exit Rules", p.ExitRules)
			printList(output, "Risk Rules", p.RiskRules)
			printList(output, "Screenshots", p.Screenshots)
			return nil
		},
	}
}

func printList(output *Output, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.Println()
	output.Bold("%s", title)
	for _, item := range items {
		output.Printf("  • %s\n", item)
	}
}

func newPlaybookEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <playbook-id>",
		Short: "Edit a playbook",
		Long:  "Edit a playbook. List flags replace the whole list. Each edit bumps the version.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()
			flags := cmd.Flags()

			var u models.PlaybookUpdate
			str := func(name string) *string {
				if !flags.Changed(name) {
					return nil
				}
				v, _ := flags.GetString(name)
				return &v
			}
			list := func(name string) []string {
				if !flags.Changed(name) {
					return nil
				}
				v, _ := flags.GetStringSlice(name)
				if v == nil {
					v = []string{}
				}
				return v
			}
			u.Name = str("name")
			u.Description = str("description")
			u.Category = str("category")
			u.MarketConditions = list("condition")
			u.SetupChecklist = list("check")
			u.ExitRules = list("exit-rule")
			u.RiskRules = list("risk-rule")
			u.Screenshots = list("screenshot")

			p, err := app.Journal.UpdatePlaybook(ctx, args[0], u)
			if err != nil {
				output.Error("Failed to update playbook: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(p)
			}
			output.Success("✓ Playbook %q updated to v%d", p.Name, p.Version)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Name")
	addPlaybookFlags(cmd)
	return cmd
}

func newPlaybookDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <playbook-id>",
		Short: "Delete a playbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := app.Journal.DeletePlaybook(ctx, args[0]); err != nil {
				output.Error("Failed to delete playbook: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Playbook %s deleted", args[0])
			return nil
		},
	}
}

func newPlaybookActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <playbook-id>",
		Short: "Set the active playbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := app.Journal.ActivatePlaybook(ctx, args[0]); err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"active_id": args[0]})
			}
			output.Success("✓ Playbook %s is now active", args[0])
			return nil
		},
	}
}
