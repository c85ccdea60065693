package maintenance

// Recommendations lists the operational safeguards around duplicate
// assignments for operator visibility. Printed by the admin CLI.
func Recommendations() []string {
	return []string{
		"Duplicate prevention runs in the assignment service; the store has no uniqueness constraint.",
		"Enable FLAG_UNIQUE_INDEX to reserve (survey, user) slots atomically at write time.",
		"Monitor vsurvey_duplicate_assignments_removed_total for drift between sweeps.",
		"Run 'vsurvey-admin cleanup' after incidents involving concurrent assignment traffic.",
		"Keep a single cleanup instance running at a time; the sweep assumes exclusive access.",
	}
}
