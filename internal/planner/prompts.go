package planner

import "fmt"

// Generation parameters per stage. The draft runs cool and short so names
// stay terse; elaboration and single-shot run warmer with room for detail.
const (
	draftTemperature = 0.4
	draftMaxTokens   = 400

	elaborateTemperature = 0.7
	elaborateMaxTokens   = 600

	singleShotTemperature = 0.7
	singleShotMaxTokens   = 2000
)

const draftSystemPrompt = "You are an expert project manager. Return ONLY a JSON array of task stubs for the goal, " +
	"where each item has: task_name (string only). 5-8 tasks."

func draftUserPrompt(goal string) string {
	return fmt.Sprintf("Goal: %s\nReturn only the JSON array of objects: [{\"task_name\": \"...\"}, ...]", goal)
}

const elaborateSystemPrompt = "You are a senior project planner. Expand the provided task into a detailed, unique specification. " +
	"Return ONLY JSON with keys: description, duration, dependencies, phase, priority."

func elaborateUserPrompt(goal, taskName string) string {
	return fmt.Sprintf("Goal: %s\n"+
		"Task: %s\n"+
		"Constraints:\n"+
		"- Provide realistic duration (e.g., '2 days', '1 week').\n"+
		"- If no blocking work, set dependencies to 'None'.\n"+
		"- Phase must be one of: Planning, Research, Design, Implementation, Testing, Launch, Maintenance.\n"+
		"- Priority must be one of: high, medium, low.\n"+
		"Respond with only JSON: {\"description\":..., \"duration\":..., \"dependencies\":..., \"phase\":..., \"priority\":...}",
		goal, taskName)
}

const singleShotSystemPrompt = `You are an expert project manager and task planning AI. Your job is to break down user goals into actionable tasks with realistic timelines.

IMPORTANT: You must respond with ONLY a valid JSON array. No other text, explanations, or markdown formatting.

The JSON should contain an array of task objects, each with these exact fields:
- task_name: string (concise task title)
- description: string (detailed description of what needs to be done)
- duration: string (e.g., "2 days", "1 week", "3 hours")
- dependencies: string (what must be completed before this task, or "None")
- phase: string (project phase: Planning, Research, Design, Implementation, Testing, Launch, or Maintenance)
- priority: string ("high", "medium", or "low")

Consider:
- Logical task dependencies and sequencing
- Realistic time estimates
- Proper project phases
- Risk mitigation and planning tasks
- Testing and quality assurance
- Documentation and handover`

func singleShotUserPrompt(goal string) string {
	return fmt.Sprintf("Break down this goal into 5-8 actionable tasks with dependencies and timelines:\n\nGoal: %s\n\nRespond with only the JSON array of tasks.", goal)
}
