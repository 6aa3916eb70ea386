package app

import (
	"math"
	"math/rand"

	"iqboard-service/internal/domain"
)

// QuestionsPerSession is the target session size; thin catalogs yield fewer.
const QuestionsPerSession = 12

const (
	easyRatio   = 0.4
	mediumRatio = 0.4
)

// SelectSessionQuestions draws a stratified random session from the catalog:
// 40% easy, 40% medium, and the remainder hard, shuffled so the final order
// carries no difficulty grouping. No question appears twice. Bands short on
// questions contribute what they have instead of failing.
func SelectSessionQuestions(catalog []domain.Question, rnd *rand.Rand) []domain.Question {
	var easy, medium, hard []domain.Question
	for _, q := range catalog {
		switch q.Difficulty {
		case domain.DifficultyEasy:
			easy = append(easy, q)
		case domain.DifficultyMedium:
			medium = append(medium, q)
		case domain.DifficultyHard:
			hard = append(hard, q)
		}
	}

	nEasy := int(math.Round(QuestionsPerSession * easyRatio))
	nMedium := int(math.Round(QuestionsPerSession * mediumRatio))
	// Remainder, not an independent rounding, so the three always sum to 12.
	nHard := QuestionsPerSession - nEasy - nMedium

	selected := pickRandom(easy, nEasy, rnd)
	selected = append(selected, pickRandom(medium, nMedium, rnd)...)
	selected = append(selected, pickRandom(hard, nHard, rnd)...)

	rnd.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected
}

// pickRandom draws k distinct questions from group. Groups at or below the
// target are taken whole, which also keeps the rejection loop off the
// degenerate k == len(group) case.
func pickRandom(group []domain.Question, k int, rnd *rand.Rand) []domain.Question {
	if len(group) <= k {
		return append([]domain.Question(nil), group...)
	}
	seen := make(map[int]struct{}, k)
	picked := make([]domain.Question, 0, k)
	for len(picked) < k {
		i := rnd.Intn(len(group))
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		picked = append(picked, group[i])
	}
	return picked
}
