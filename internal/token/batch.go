package token

import "strings"

// Separator joins blocks within one packed batch.
const Separator = "\n\n"

// Pack greedily packs blocks into batches whose joined weighted cost
// stays within limit. Blocks keep their input order and are never split:
// a block that alone exceeds the limit becomes a singleton batch, and
// order-preserving first-fit is chosen over optimal packing.
func Pack(blocks []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultCharLimit
	}

	sepCost := Weight(Separator)

	var batches []string
	var current []string
	currentCost := 0

	for _, block := range blocks {
		cost := Weight(block)

		if len(current) > 0 && currentCost+sepCost+cost > limit {
			batches = append(batches, strings.Join(current, Separator))
			current = current[:0]
			currentCost = 0
		}

		if len(current) > 0 {
			currentCost += sepCost
		}
		current = append(current, block)
		currentCost += cost
	}

	if len(current) > 0 {
		batches = append(batches, strings.Join(current, Separator))
	}
	return batches
}
