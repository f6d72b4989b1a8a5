package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"trade-journal/internal/gamification"
	"trade-journal/internal/models"
)

// addProfileCommands adds profile, streak and challenge commands.
func addProfileCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Level, experience, badges and settings",
	}

	cmd.AddCommand(newProfileShowCmd(app))
	cmd.AddCommand(newProfileSettingsCmd(app))
	cmd.AddCommand(newProfileBadgeCmd(app))

	rootCmd.AddCommand(cmd)
	rootCmd.AddCommand(newStreaksCmd(app))
	rootCmd.AddCommand(newChallengesCmd(app))
}

func newProfileShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			p := app.Journal.Profile()
			if output.IsJSON() {
				return output.JSON(p)
			}

			output.Bold("%s", p.Name)
			if p.Email != "" {
				output.Dim("%s", p.Email)
			}
			output.Println()
			output.Printf("  Level:       %d\n", p.Level)
			output.Printf("  Experience:  %d XP\n", p.Experience)
			output.Printf("  Next level:  %s %.0f%% (%d XP to go)\n",
				ProgressBar(p.LevelProgress, 20), p.LevelProgress, p.ExperienceToNext)
			output.Printf("  Badges:      %s\n", JoinOrDash(p.Badges))
			output.Println()
			output.Bold("Settings")
			printSettings(output, p.Settings)
			return nil
		},
	}
}

func printSettings(output *Output, s models.UserSettings) {
	output.Printf("  Theme:          %s\n", s.Theme)
	output.Printf("  Notifications:  %v\n", s.Notifications)
	output.Printf("  Feedback:       %s\n", s.FeedbackFrequency)
	output.Printf("  Playbook:       %s\n", orDash(s.DefaultPlaybook))
}

func newProfileSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Update profile settings",
		Long: `Update profile settings and identity. Only the flags you pass change.
Without flags the current settings are printed.`,
		Example: `  journal profile settings --theme light
  journal profile settings --notifications=false
  journal profile settings --name "Alex" --email alex@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()
			flags := cmd.Flags()

			if flags.Changed("name") || flags.Changed("email") {
				name, _ := flags.GetString("name")
				email, _ := flags.GetString("email")
				app.Journal.UpdateIdentity(ctx, name, email)
			}

			var u models.SettingsUpdate
			if flags.Changed("theme") {
				v, _ := flags.GetString("theme")
				theme := models.Theme(strings.ToLower(v))
				u.Theme = &theme
			}
			if flags.Changed("notifications") {
				v, _ := flags.GetBool("notifications")
				u.Notifications = &v
			}
			if flags.Changed("feedback") {
				v, _ := flags.GetString("feedback")
				freq := models.FeedbackFrequency(strings.ToLower(v))
				u.FeedbackFrequency = &freq
			}
			if flags.Changed("playbook") {
				v, _ := flags.GetString("playbook")
				u.DefaultPlaybook = &v
			}

			settings, err := app.Journal.UpdateSettings(ctx, u)
			if err != nil {
				output.Error("Failed to update settings: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(settings)
			}
			for _, name := range []string{"name", "email", "theme", "notifications", "feedback", "playbook"} {
				if flags.Changed(name) {
					output.Success("✓ Settings updated")
					break
				}
			}
			printSettings(output, settings)
			return nil
		},
	}

	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("theme", "", "Theme (light, dark)")
	cmd.Flags().Bool("notifications", true, "Show unlock and level-up notifications")
	cmd.Flags().String("feedback", "", "Feedback frequency (immediate, daily, weekly)")
	cmd.Flags().String("playbook", "", "Default playbook id (empty clears)")

	return cmd
}

func newProfileBadgeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Grant or revoke badges",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Grant a badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			added, err := app.Journal.AddBadge(ctx, args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"badge": args[0], "added": added})
			}
			if added {
				output.Success("✓ Badge %q granted", args[0])
			} else {
				output.Info("Badge %q already held", args[0])
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <name>",
		Short: "Revoke a badge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			removed := app.Journal.RemoveBadge(ctx, args[0])
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"badge": args[0], "removed": removed})
			}
			if removed {
				output.Success("✓ Badge %q removed", args[0])
			} else {
				output.Warning("Badge %q not held", args[0])
			}
			return nil
		},
	})

	return cmd
}

func newStreaksCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "streaks",
		Short: "Show journaling streaks",
		Long:  "Show how many consecutive days and weeks you have logged trades.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			streaks := app.Journal.Streaks(ctx)
			if output.IsJSON() {
				if streaks == nil {
					streaks = []gamification.Streak{}
				}
				return output.JSON(streaks)
			}
			if !anyStreak(streaks) {
				output.Info("No streaks yet. Log a trade to start one.")
				return nil
			}

			table := NewTable(output, "Cadence", "Current", "Longest", "Last Trade")
			for _, s := range streaks {
				current := strconv.Itoa(s.Current)
				if s.Current > 0 {
					current = output.Green(current)
				}
				table.AddRow(string(s.Cadence), current, strconv.Itoa(s.Longest),
					FormatDate(s.LastCredited, app.Config.UI.DateFormat))
			}
			table.Render()
			return nil
		},
	}
}

func anyStreak(streaks []gamification.Streak) bool {
	for _, s := range streaks {
		if s.Longest > 0 {
			return true
		}
	}
	return false
}

func newChallengesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenges",
		Short: "Daily, weekly and monthly challenges",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			challenges := app.Journal.Challenges()
			if output.IsJSON() {
				return output.JSON(challenges)
			}

			table := NewTable(output, "ID", "Title", "Cadence", "Progress", "", "Reward")
			for _, ch := range challenges {
				progress := fmt.Sprintf("%d/%d", ch.Progress, ch.Target)
				if ch.Completed {
					progress = output.Green(progress)
				}
				table.AddRow(ch.ID, ch.Title, string(ch.Cadence), progress,
					ProgressBar(ch.Percent(), 10), describeReward(ch.Reward))
			}
			table.Render()
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "set <challenge-id> <progress>",
		Short:   "Record challenge progress",
		Example: `  journal challenges set challenge-1 3`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("progress must be an integer: %q", args[1])
			}
			ch, err := app.Journal.SetChallengeProgress(ctx, args[0], value)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(ch)
			}
			if ch.Completed {
				output.Success("✓ %s completed (%d/%d)", ch.Title, ch.Progress, ch.Target)
			} else {
				output.Info("%s: %d/%d", ch.Title, ch.Progress, ch.Target)
			}
			return nil
		},
	})

	return cmd
}

func describeReward(r gamification.Reward) string {
	switch r.Type {
	case gamification.RewardPoints:
		return fmt.Sprintf("%d XP", r.Points)
	case gamification.RewardBadge:
		return "badge: " + r.Value
	}
	return string(r.Type) + ": " + r.Value
}
