// Package achievements evaluates the achievement catalog against the trade
// history and tracks which achievements are unlocked.
package achievements

// Category groups achievements for listing.
type Category string

const (
	CategoryTrading     Category = "trading"
	CategoryLearning    Category = "learning"
	CategoryConsistency Category = "consistency"
	CategoryRisk        Category = "risk"
)

// Difficulty grades achievements for listing.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Achievement is an immutable catalog entry.
type Achievement struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	XPReward    int        `json:"xp_reward"`
	Badge       string     `json:"badge,omitempty"`
	Category    Category   `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Rule        Rule       `json:"rule"`
}

// catalog is evaluated in declaration order.
var catalog = []Achievement{
	{
		ID:          "first-trade",
		Title:       "First Steps",
		Description: "Complete your first trade",
		Icon:        "🎯",
		XPReward:    100,
		Badge:       "beginner",
		Category:    CategoryTrading,
		Difficulty:  DifficultyEasy,
		Rule:        Rule{Kind: RuleTradeCount, Count: 1},
	},
	{
		ID:          "winning-streak-3",
		Title:       "Hot Streak",
		Description: "Win 3 trades in a row",
		Icon:        "🔥",
		XPReward:    250,
		Badge:       "streaker",
		Category:    CategoryTrading,
		Difficulty:  DifficultyMedium,
		Rule:        Rule{Kind: RuleWinningStreak, Count: 3},
	},
	{
		ID:          "risk-manager",
		Title:       "Risk Manager",
		Description: "Complete 10 trades with proper position sizing",
		Icon:        "🛡️",
		XPReward:    500,
		Badge:       "risk-master",
		Category:    CategoryRisk,
		Difficulty:  DifficultyMedium,
		Rule:        Rule{Kind: RuleSizedTrades, Count: 10, MaxPositionSize: 0.02},
	},
	{
		ID:          "profitable-month",
		Title:       "Profitable Month",
		Description: "Achieve positive returns for a full month",
		Icon:        "📈",
		XPReward:    1000,
		Badge:       "consistent",
		Category:    CategoryConsistency,
		Difficulty:  DifficultyHard,
		Rule:        Rule{Kind: RuleProfitableMonth, Count: 10},
	},
}

// Catalog returns the achievement definitions in evaluation order.
func Catalog() []Achievement {
	return append([]Achievement(nil), catalog...)
}

// Lookup returns the catalog entry with the given id.
func Lookup(id string) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
