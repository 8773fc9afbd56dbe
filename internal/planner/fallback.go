package planner

// Goal truncation lengths used when interpolating goal text into generated
// descriptions.
const (
	syntheticGoalLimit = 80
	fallbackGoalLimit  = 100
)

// truncateRunes returns at most limit runes of s. Goals are user text and
// may contain multi-byte characters; byte slicing would split them.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// syntheticElaboration builds the deterministic substitute used when
// elaborating one drafted task fails. The first task opens the plan; every
// later task depends on the immediately preceding drafted name, preserving
// the dependency chain even under partial failure.
func syntheticElaboration(goal string, names []string, i int) TaskBreakdown {
	dependencies := "None"
	phase := "Planning"
	if i > 0 {
		dependencies = names[i-1]
		phase = "Implementation"
	}

	return TaskBreakdown{
		TaskName:     names[i],
		Description:  "Plan and execute: " + names[i] + " for goal '" + truncateRunes(goal, syntheticGoalLimit) + "...'",
		Duration:     "2-3 days",
		Dependencies: dependencies,
		Phase:        phase,
		Priority:     "medium",
	}
}

// fallbackTasks is the terminal stage: a fixed six-task plan covering the
// generic project lifecycle, with the goal interpolated into the first
// description. It has no external dependency and cannot fail.
func fallbackTasks(goal string) []TaskBreakdown {
	return []TaskBreakdown{
		{
			TaskName:     "Define Requirements & Constraints",
			Description:  "Clarify specific requirements, constraints, and success criteria for: " + truncateRunes(goal, fallbackGoalLimit) + "...",
			Duration:     "1-2 days",
			Dependencies: "None",
			Phase:        "Planning",
			Priority:     "high",
		},
		{
			TaskName:     "Research & Analysis",
			Description:  "Conduct necessary research, competitive analysis, and gather required information",
			Duration:     "2-3 days",
			Dependencies: "Define Requirements & Constraints",
			Phase:        "Research",
			Priority:     "high",
		},
		{
			TaskName:     "Create Implementation Plan",
			Description:  "Design detailed approach, architecture, and step-by-step implementation strategy",
			Duration:     "1-2 days",
			Dependencies: "Research & Analysis",
			Phase:        "Design",
			Priority:     "medium",
		},
		{
			TaskName:     "Execute Core Implementation",
			Description:  "Execute the main development/implementation work according to the plan",
			Duration:     "5-7 days",
			Dependencies: "Create Implementation Plan",
			Phase:        "Implementation",
			Priority:     "high",
		},
		{
			TaskName:     "Testing & Quality Assurance",
			Description:  "Thoroughly test implementation, fix bugs, and ensure quality standards",
			Duration:     "2-3 days",
			Dependencies: "Execute Core Implementation",
			Phase:        "Testing",
			Priority:     "medium",
		},
		{
			TaskName:     "Launch & Deployment",
			Description:  "Deploy, launch, and make the solution live with proper monitoring",
			Duration:     "1 day",
			Dependencies: "Testing & Quality Assurance",
			Phase:        "Launch",
			Priority:     "high",
		},
	}
}
