package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testConfig = `[storage]
backend = "file"

[logging]
file = false
console = false
`

// configDir returns a config directory using the file backend.
func configDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(testConfig), 0644))
	return dir
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one CLI invocation against dir, like a separate process.
func run(t *testing.T, dir string, args ...string) result {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", dir}, args...))
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// runJSON executes a --json invocation and decodes stdout into v.
func runJSON(t *testing.T, dir string, v interface{}, args ...string) {
	t.Helper()
	res := run(t, dir, append(args, "--json")...)
	require.NoError(t, res.err, res.stdout)
	require.NoError(t, json.Unmarshal([]byte(res.stdout), v), res.stdout)
}

type addedTrade struct {
	Trade struct {
		ID         string  `json:"id"`
		Symbol     string  `json:"symbol"`
		Profit     float64 `json:"profit"`
		Outcome    string  `json:"outcome"`
		PlaybookID string  `json:"playbook_id"`
	} `json:"trade"`
	Unlocked []struct {
		ID string `json:"id"`
	} `json:"unlocked"`
	Streaks []struct {
		Cadence string `json:"cadence"`
		Current int    `json:"current"`
	} `json:"streaks"`
}

func addTrade(t *testing.T, dir string, args ...string) addedTrade {
	t.Helper()
	var res addedTrade
	runJSON(t, dir, &res, append([]string{"trade", "add"}, args...)...)
	return res
}

func TestVersionSkipsConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")

	res := run(t, dir, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Trade Journal v"+Version)

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "version must not create the config directory")

	var v map[string]string
	runJSON(t, dir, &v, "version")
	assert.Equal(t, Version, v["version"])
}

func TestConfigCommands(t *testing.T) {
	dir := configDir(t)

	res := run(t, dir, "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Backend:         file")

	res = run(t, dir, "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), strings.TrimSpace(res.stdout))

	res = run(t, dir, "config", "validate")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Configuration is valid")

	_, err := os.Stat(filepath.Join(dir, "storage.json"))
	assert.True(t, os.IsNotExist(err), "config commands must not open storage")
}

func TestConfigShowMasksSecrets(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig + `
[notifications.webhook]
enabled = true
url = "https://hooks.example.com/journal?token=supersecret123"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(cfg), 0644))

	res := run(t, dir, "config", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Webhook URL:")
	assert.NotContains(t, res.stdout, "supersecret123")

	res = run(t, dir, "config", "show", "--json")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "supersecret123")
	assert.Contains(t, res.stdout, "hooks.example.com")
}

func TestInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[storage]\nbackend = \"floppy\"\n"), 0644))

	res := run(t, dir, "trade", "list")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid storage backend")
}

func TestTradeLifecyclePersistsAcrossInvocations(t *testing.T) {
	dir := configDir(t)

	first := addTrade(t, dir, "aapl", "long", "--entry", "150", "--exit", "155", "--size", "0.02",
		"--strategy", "breakout", "--emotion", "calm", "--at", "2024-05-20 10:30")
	require.NotEmpty(t, first.Trade.ID)
	assert.Equal(t, "AAPL", first.Trade.Symbol)
	assert.InDelta(t, 5.0, first.Trade.Profit, 1e-9)
	assert.Equal(t, "profit", first.Trade.Outcome)
	require.Len(t, first.Unlocked, 1)
	assert.Equal(t, "first-trade", first.Unlocked[0].ID)

	second := addTrade(t, dir, "ES", "short", "--entry", "5300", "--exit", "5310", "--at", "2024-05-21")
	assert.InDelta(t, -10.0, second.Trade.Profit, 1e-9)
	assert.Empty(t, second.Unlocked)

	var trades []map[string]interface{}
	runJSON(t, dir, &trades, "trade", "list")
	require.Len(t, trades, 2)
	assert.Equal(t, first.Trade.ID, trades[0]["id"])

	runJSON(t, dir, &trades, "trade", "list", "--symbol", "es")
	require.Len(t, trades, 1)
	assert.Equal(t, second.Trade.ID, trades[0]["id"])

	res := run(t, dir, "trade", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "2 trades, net -5.00")

	var edited addedTrade
	runJSON(t, dir, &edited, "trade", "edit", second.Trade.ID, "--exit", "5250", "--notes", "covered early")
	assert.InDelta(t, 50.0, edited.Trade.Profit, 1e-9)

	res = run(t, dir, "trade", "show", second.Trade.ID)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "covered early")
	assert.Contains(t, res.stdout, "+50.00")

	res = run(t, dir, "trade", "delete", first.Trade.ID)
	require.NoError(t, res.err)
	runJSON(t, dir, &trades, "trade", "list")
	assert.Len(t, trades, 1)

	res = run(t, dir, "trade", "show", first.Trade.ID)
	assert.Error(t, res.err)

	// Achievements stay unlocked after the triggering trade is deleted.
	var profile struct {
		Experience int      `json:"experience"`
		Badges     []string `json:"badges"`
	}
	runJSON(t, dir, &profile, "profile", "show")
	assert.Equal(t, 100, profile.Experience)
	assert.Equal(t, []string{"beginner"}, profile.Badges)
}

func TestTradeAddValidation(t *testing.T) {
	dir := configDir(t)

	res := run(t, dir, "trade", "add", "AAPL", "sideways", "--entry", "1", "--exit", "2")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "long or short")

	res = run(t, dir, "trade", "add", "AAPL", "long", "--entry", "1")
	require.Error(t, res.err)

	res = run(t, dir, "trade", "add", "AAPL", "long", "--entry", "1", "--exit", "2", "--size", "1.5")
	require.Error(t, res.err)

	res = run(t, dir, "trade", "add", "AAPL", "long", "--entry", "1", "--exit", "2", "--at", "yesterday")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid time")
}

func TestUnlockNotificationsGoToStderr(t *testing.T) {
	dir := configDir(t)

	res := run(t, dir, "trade", "add", "AAPL", "long", "--entry", "150", "--exit", "155")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "First Steps unlocked (+100 XP)")
	assert.Contains(t, res.stderr, "Achievement Unlocked: First Steps")
	assert.Contains(t, res.stderr, "Complete your first trade")
}

func TestNotificationSettingSilencesUnlocks(t *testing.T) {
	dir := configDir(t)

	res := run(t, dir, "profile", "settings", "--notifications=false")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Settings updated")

	res = run(t, dir, "trade", "add", "AAPL", "long", "--entry", "150", "--exit", "155")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stderr, "Achievement Unlocked")

	var profile struct {
		Experience int `json:"experience"`
	}
	runJSON(t, dir, &profile, "profile", "show")
	assert.Equal(t, 100, profile.Experience, "rewards apply while notifications are off")
}

func TestAchievementCommands(t *testing.T) {
	dir := configDir(t)
	addTrade(t, dir, "AAPL", "long", "--entry", "150", "--exit", "155")

	var statuses []struct {
		ID       string  `json:"id"`
		Unlocked bool    `json:"unlocked"`
		Progress float64 `json:"progress"`
	}
	runJSON(t, dir, &statuses, "achievements", "list")
	require.NotEmpty(t, statuses)
	assert.Equal(t, "first-trade", statuses[0].ID)
	assert.True(t, statuses[0].Unlocked)

	runJSON(t, dir, &statuses, "achievements", "list", "--unlocked")
	require.Len(t, statuses, 1)

	res := run(t, dir, "achievements", "show", "first-trade")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "First Steps")
	assert.Contains(t, res.stdout, "unlocked")

	res = run(t, dir, "achievements", "show", "no-such-thing")
	assert.Error(t, res.err)

	var progress map[string]float64
	runJSON(t, dir, &progress, "achievements", "progress")
	assert.NotContains(t, progress, "first-trade")
	for id, p := range progress {
		assert.GreaterOrEqual(t, p, 0.0, id)
		assert.LessOrEqual(t, p, 100.0, id)
	}
}

func TestProfileBadgesAndChallenges(t *testing.T) {
	dir := configDir(t)

	res := run(t, dir, "profile", "badge", "add", "mentor")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `Badge "mentor" granted`)

	res = run(t, dir, "profile", "badge", "add", "mentor")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "already held")

	var challenge struct {
		Completed bool `json:"completed"`
		Rewarded  bool `json:"rewarded"`
	}
	runJSON(t, dir, &challenge, "challenges", "set", "challenge-1", "5")
	assert.True(t, challenge.Completed)
	assert.True(t, challenge.Rewarded)

	// A second completion pays nothing.
	runJSON(t, dir, &challenge, "challenges", "set", "challenge-1", "6")

	var profile struct {
		Experience int      `json:"experience"`
		Badges     []string `json:"badges"`
	}
	runJSON(t, dir, &profile, "profile", "show")
	assert.Equal(t, 100, profile.Experience)
	assert.Contains(t, profile.Badges, "mentor")

	res = run(t, dir, "profile", "badge", "remove", "mentor")
	require.NoError(t, res.err)
	runJSON(t, dir, &profile, "profile", "show")
	assert.NotContains(t, profile.Badges, "mentor")

	res = run(t, dir, "challenges", "set", "challenge-1", "lots")
	assert.Error(t, res.err)
	res = run(t, dir, "challenges", "set", "nope", "1")
	assert.Error(t, res.err)

	res = run(t, dir, "profile", "settings", "--theme", "neon")
	assert.Error(t, res.err)
}

func TestStreaksCommand(t *testing.T) {
	dir := configDir(t)

	res := run(t, dir, "streaks")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No streaks yet")

	addTrade(t, dir, "AAPL", "long", "--entry", "150", "--exit", "155")

	var streaks []struct {
		Cadence string `json:"cadence"`
		Current int    `json:"current"`
	}
	runJSON(t, dir, &streaks, "streaks")
	require.Len(t, streaks, 2)
	for _, s := range streaks {
		assert.Equal(t, 1, s.Current, s.Cadence)
	}
}

func TestPlaybookCommands(t *testing.T) {
	dir := configDir(t)

	var p struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Version int      `json:"version"`
		Checks  []string `json:"setup_checklist"`
	}
	runJSON(t, dir, &p, "playbook", "add", "Opening range breakout", "--category", "momentum",
		"--check", "volume above average", "--check", "clean range", "--activate")
	require.NotEmpty(t, p.ID)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, []string{"volume above average", "clean range"}, p.Checks)

	trade := addTrade(t, dir, "AAPL", "long", "--entry", "150", "--exit", "155")
	assert.Equal(t, p.ID, trade.Trade.PlaybookID, "new trades use the active playbook")

	runJSON(t, dir, &p, "playbook", "edit", p.ID, "--name", "ORB")
	assert.Equal(t, "ORB", p.Name)
	assert.Equal(t, 2, p.Version)

	res := run(t, dir, "playbook", "show")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "ORB (v2)")
	assert.Contains(t, res.stdout, "clean range")

	var list struct {
		Playbooks []struct {
			ID string `json:"id"`
		} `json:"playbooks"`
		ActiveID string `json:"active_id"`
	}
	runJSON(t, dir, &list, "playbook", "list")
	require.Len(t, list.Playbooks, 1)
	assert.Equal(t, p.ID, list.ActiveID)

	res = run(t, dir, "playbook", "delete", p.ID)
	require.NoError(t, res.err)
	runJSON(t, dir, &list, "playbook", "list")
	assert.Empty(t, list.Playbooks)
	assert.Empty(t, list.ActiveID)

	res = run(t, dir, "playbook", "show")
	assert.Error(t, res.err)
	res = run(t, dir, "playbook", "activate", "missing")
	assert.Error(t, res.err)
}

func TestStatsCommands(t *testing.T) {
	dir := configDir(t)
	addTrade(t, dir, "AAPL", "long", "--entry", "100", "--exit", "110", "--at", "2024-05-01", "--strategy", "breakout")
	addTrade(t, dir, "AAPL", "long", "--entry", "100", "--exit", "95", "--at", "2024-05-02", "--strategy", "breakout")
	addTrade(t, dir, "MSFT", "short", "--entry", "50", "--exit", "40", "--at", "2024-05-02")

	var summary struct {
		Summary struct {
			TotalTrades  int     `json:"total_trades"`
			Wins         int     `json:"wins"`
			NetProfit    float64 `json:"net_profit"`
			ProfitFactor float64 `json:"profit_factor"`
		} `json:"summary"`
		CurrentRun struct {
			Kind   string `json:"kind"`
			Length int    `json:"length"`
		} `json:"current_run"`
		LongestWin int `json:"longest_win"`
	}
	runJSON(t, dir, &summary, "stats", "summary")
	assert.Equal(t, 3, summary.Summary.TotalTrades)
	assert.Equal(t, 2, summary.Summary.Wins)
	assert.InDelta(t, 15.0, summary.Summary.NetProfit, 1e-9)
	assert.InDelta(t, 4.0, summary.Summary.ProfitFactor, 1e-9)
	assert.Equal(t, "win", summary.CurrentRun.Kind)
	assert.Equal(t, 1, summary.CurrentRun.Length)
	assert.Equal(t, 1, summary.LongestWin)

	var groups []struct {
		Key    string `json:"key"`
		Trades int    `json:"trades"`
	}
	runJSON(t, dir, &groups, "stats", "breakdown", "--by", "strategy")
	require.Len(t, groups, 2)
	assert.Equal(t, "Unspecified", groups[0].Key)
	assert.Equal(t, "breakout", groups[1].Key)

	res := run(t, dir, "stats", "breakdown", "--by", "weather")
	assert.Error(t, res.err)

	var days []struct {
		Trades int `json:"trades"`
	}
	runJSON(t, dir, &days, "stats", "calendar", "--month", "2024-05")
	require.Len(t, days, 31)
	assert.Equal(t, 1, days[0].Trades)
	assert.Equal(t, 2, days[1].Trades)

	res = run(t, dir, "stats", "calendar", "--month", "May")
	assert.Error(t, res.err)
}

func TestExport(t *testing.T) {
	dir := configDir(t)
	addTrade(t, dir, "AAPL", "long", "--entry", "150", "--exit", "155", "--emotion", "calm", "--emotion", "focused")
	addTrade(t, dir, "MSFT", "short", "--entry", "50", "--exit", "55")

	res := run(t, dir, "export", "--format", "csv")
	require.NoError(t, res.err)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,timestamp,symbol,direction"), lines[0])
	assert.Contains(t, lines[1], "calm;focused")

	res = run(t, dir, "export", "--format", "csv", "--symbol", "msft")
	require.NoError(t, res.err)
	assert.Len(t, strings.Split(strings.TrimSpace(res.stdout), "\n"), 2)

	path := filepath.Join(t.TempDir(), "journal.yaml")
	res = run(t, dir, "export", "--format", "yaml", "--output", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Exported 2 trades")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var bundle struct {
		Profile struct {
			Experience int `yaml:"experience"`
		} `yaml:"profile"`
		Achievements []string                 `yaml:"achievements"`
		Trades       []map[string]interface{} `yaml:"trades"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &bundle))
	assert.Len(t, bundle.Trades, 2)
	assert.Equal(t, []string{"first-trade"}, bundle.Achievements)
	assert.Equal(t, 100, bundle.Profile.Experience)

	res = run(t, dir, "export", "--format", "xml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "unknown export format")
}

func TestSQLiteBackendPersists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"),
		[]byte("[storage]\nbackend = \"sqlite\"\n\n[logging]\nfile = false\n"), 0644))

	first := addTrade(t, dir, "AAPL", "long", "--entry", "150", "--exit", "155")
	require.Len(t, first.Unlocked, 1)

	second := addTrade(t, dir, "AAPL", "long", "--entry", "150", "--exit", "156")
	assert.Empty(t, second.Unlocked, "unlocks persist in the database")

	_, err := os.Stat(filepath.Join(dir, "journal.db"))
	assert.NoError(t, err)
}
