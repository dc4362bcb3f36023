package benefit

// Resolve returns the benefits granted by the subscriber's plan that the
// partner is also authorized to redeem, deduplicated by benefit ID.
func Resolve(planBenefits, partnerOffered []Benefit) []Benefit {
	offered := make(map[string]bool, len(partnerOffered))
	for _, b := range partnerOffered {
		offered[b.ID] = true
	}

	seen := make(map[string]bool, len(planBenefits))
	eligible := make([]Benefit, 0, len(planBenefits))
	for _, b := range planBenefits {
		if seen[b.ID] || !offered[b.ID] {
			continue
		}
		seen[b.ID] = true
		eligible = append(eligible, b)
	}

	return eligible
}

// ResolveAll is the privileged variant: administrative actors see the full
// plan-benefit list with no partner-side filter. Callers pick the variant via
// an explicit capability decision, never a role string inside this package.
func ResolveAll(planBenefits []Benefit) []Benefit {
	seen := make(map[string]bool, len(planBenefits))
	eligible := make([]Benefit, 0, len(planBenefits))
	for _, b := range planBenefits {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		eligible = append(eligible, b)
	}

	return eligible
}
