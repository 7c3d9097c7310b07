package validator

import (
	"hash/fnv"
	"math/rand"
	"strings"
)

// ScrambleName anonymizes a person's name by shuffling the interior of each
// word, keeping the first and last rune. The shuffle is seeded from the word
// itself so re-running extraction on the same document reproduces the same
// output byte for byte.
func ScrambleName(name string) string {
	if name == "" {
		return ""
	}
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(w)
		if len(runes) <= 2 {
			continue
		}
		middle := runes[1 : len(runes)-1]
		h := fnv.New64a()
		h.Write([]byte(w))
		rng := rand.New(rand.NewSource(int64(h.Sum64())))
		rng.Shuffle(len(middle), func(a, b int) {
			middle[a], middle[b] = middle[b], middle[a]
		})
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
