// Package gamification computes levels, streaks and challenge progress.
package gamification

import "math"

// xpPerLevelStep is the experience cost of the first level. Level n needs
// xpPerLevelStep * (1 + 2 + ... + n) in total.
const xpPerLevelStep = 1000

// CalculateLevel returns the level reached with xp experience.
func CalculateLevel(xp int) int {
	if xp <= 0 {
		return 0
	}
	return int(math.Floor((-1 + math.Sqrt(1+8*float64(xp)/xpPerLevelStep)) / 2))
}

// ExperienceForLevel returns the cumulative experience needed to reach level n.
func ExperienceForLevel(n int) int {
	if n <= 0 {
		return 0
	}
	return xpPerLevelStep / 2 * n * (n + 1)
}

// ExperienceToNextLevel returns how much more experience is needed to move
// past the level reached with xp.
func ExperienceToNextLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return ExperienceForLevel(CalculateLevel(xp)+1) - xp
}

// LevelProgress returns how far xp is through its current level, 0 to 100.
func LevelProgress(xp int) float64 {
	level := CalculateLevel(xp)
	floor := ExperienceForLevel(level)
	span := ExperienceForLevel(level+1) - floor
	if xp < 0 || span <= 0 {
		return 0
	}
	return float64(xp-floor) / float64(span) * 100
}
