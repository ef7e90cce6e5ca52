// file: services/words.go
package services

import (
	"math/rand"

	"codenames-sync/models"
)

// wordList is the fixed pool boards are dealt from.
var wordList = []string{
	"apple", "bank", "bark", "berlin", "bolt", "bridge", "canada", "cast",
	"cell", "chair", "check", "cloak", "code", "comet", "crane", "crown",
	"day", "diamond", "dragon", "engine", "field", "fire", "glass", "horse",
	"ice", "jet", "key", "knight", "lemon", "light", "mail", "march",
	"mercury", "mint", "moon", "needle", "night", "olive", "organ", "pan",
	"pilot", "pirate", "plane", "queen", "ring", "robot", "school", "shadow",
	"spring", "star", "table", "tower", "train", "wave", "whale", "yard",
}

// Deal draws a board for seed: 9 red, 8 blue, 7 neutral and 1 assassin
// card, shuffled. The same seed always yields the same board.
func Deal(seed int64) []models.Word {
	rng := rand.New(rand.NewSource(seed))

	colors := make([]models.ColorID, 0, models.BoardSize)
	for _, c := range []struct {
		color models.ColorID
		n     int
	}{{models.Red, 9}, {models.Blue, 8}, {models.Neutral, 7}, {models.Assassin, 1}} {
		for i := 0; i < c.n; i++ {
			colors = append(colors, c.color)
		}
	}
	rng.Shuffle(len(colors), func(i, j int) { colors[i], colors[j] = colors[j], colors[i] })

	picks := rng.Perm(len(wordList))[:models.BoardSize]
	words := make([]models.Word, models.BoardSize)
	for i, idx := range picks {
		words[i] = models.Word{Text: wordList[idx], Color: colors[i]}
	}
	return words
}
