package targeting

import "fmt"

// ValidateSelection checks a player's pick against the request it answers:
// every ID must come from the candidate set, the count must respect the cap
// and no card may be picked twice. Picking nothing is legal; the effect then
// resolves over zero targets.
func ValidateSelection(req *Request, selected []string) error {
	if req == nil {
		return fmt.Errorf("no targeting request outstanding")
	}
	if len(selected) > req.Cap {
		return fmt.Errorf("too many targets: at most %d, got %d", req.Cap, len(selected))
	}

	eligible := make(map[string]bool, len(req.Candidates))
	for _, card := range req.Candidates {
		eligible[card.ID] = true
	}

	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !eligible[id] {
			return fmt.Errorf("target %s is not a candidate", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate target: %s", id)
		}
		seen[id] = true
	}
	return nil
}
