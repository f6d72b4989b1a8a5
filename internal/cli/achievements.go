package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"trade-journal/internal/achievements"
)

// addAchievementCommands adds achievement catalog commands.
func addAchievementCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:     "achievements",
		Aliases: []string{"ach"},
		Short:   "Browse achievements",
		Long:    "List the achievement catalog with unlock state and progress.",
	}

	cmd.AddCommand(newAchievementsListCmd(app))
	cmd.AddCommand(newAchievementsShowCmd(app))
	cmd.AddCommand(newAchievementsProgressCmd(app))

	rootCmd.AddCommand(cmd)
}

// filterStatuses keeps entries matching the category, difficulty and
// unlocked filters. Empty filters match everything.
func filterStatuses(all []achievements.Status, category, difficulty string, unlockedOnly, lockedOnly bool) []achievements.Status {
	var out []achievements.Status
	for _, s := range all {
		if category != "" && string(s.Category) != category {
			continue
		}
		if difficulty != "" && string(s.Difficulty) != difficulty {
			continue
		}
		if unlockedOnly && !s.Unlocked {
			continue
		}
		if lockedOnly && s.Unlocked {
			continue
		}
		out = append(out, s)
	}
	return out
}

func newAchievementsListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List achievements",
		Example: `  journal achievements list
  journal achievements list --category risk --locked`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			category, _ := cmd.Flags().GetString("category")
			difficulty, _ := cmd.Flags().GetString("difficulty")
			unlocked, _ := cmd.Flags().GetBool("unlocked")
			locked, _ := cmd.Flags().GetBool("locked")

			statuses := filterStatuses(app.Journal.Achievements(), category, difficulty, unlocked, locked)
			if output.IsJSON() {
				if statuses == nil {
					statuses = []achievements.Status{}
				}
				return output.JSON(statuses)
			}
			if len(statuses) == 0 {
				output.Info("No achievements match.")
				return nil
			}

			done := 0
			table := NewTable(output, "", "ID", "Title", "Category", "Difficulty", "XP", "Status")
			for _, s := range statuses {
				state := output.DimText("locked")
				if s.Unlocked {
					state = output.Green("unlocked")
					done++
				}
				table.AddRow(s.Icon, s.ID, s.Title, string(s.Category), string(s.Difficulty),
					fmt.Sprintf("%d", s.XPReward), state)
			}
			table.Render()
			output.Println()
			output.Printf("%d of %d unlocked\n", done, len(statuses))
			return nil
		},
	}

	cmd.Flags().String("category", "", "Filter by category (trading, risk, consistency, learning)")
	cmd.Flags().String("difficulty", "", "Filter by difficulty (easy, medium, hard, expert)")
	cmd.Flags().Bool("unlocked", false, "Only unlocked achievements")
	cmd.Flags().Bool("locked", false, "Only locked achievements")

	return cmd
}

func newAchievementsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <achievement-id>",
		Short: "Show one achievement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s, err := app.Journal.Achievement(args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(s)
			}

			output.Bold("%s %s", s.Icon, s.Title)
			output.Printf("  %s\n", s.Description)
			output.Println()
			output.Printf("  Category:    %s\n", s.Category)
			output.Printf("  Difficulty:  %s\n", s.Difficulty)
			output.Printf("  Reward:      %d XP", s.XPReward)
			if s.Badge != "" {
				output.Printf(", badge %q", s.Badge)
			}
			output.Println()
			if s.Unlocked {
				output.Printf("  Status:      %s\n", output.Green("unlocked"))
			} else {
				output.Printf("  Progress:    %s %.0f%%\n", ProgressBar(s.Progress, 20), s.Progress)
			}
			return nil
		},
	}
}

func newAchievementsProgressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show progress toward locked achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			locked := filterStatuses(app.Journal.Achievements(), "", "", false, true)
			if output.IsJSON() {
				progress := make(map[string]float64, len(locked))
				for _, s := range locked {
					progress[s.ID] = s.Progress
				}
				return output.JSON(progress)
			}
			if len(locked) == 0 {
				output.Success("✓ Every achievement is unlocked")
				return nil
			}

			table := NewTable(output, "Achievement", "Progress", "")
			for _, s := range locked {
				table.AddRow(s.Icon+" "+s.Title, ProgressBar(s.Progress, 20), fmt.Sprintf("%.0f%%", s.Progress))
			}
			table.Render()
			return nil
		},
	}
}
