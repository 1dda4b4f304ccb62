// Package prompts builds the natural-language prompts sent to the model for
// each HealthMate feature. Every function here is pure.
package prompts

import (
	"fmt"
	"strings"
)

// ChatAspects lists what the assistant is asked to consider for a free-form query.
var ChatAspects = []string{
	"general health",
	"medical conditions",
	"wellness trends",
	"nutrition",
	"fitness",
	"mental health",
	"public health",
}

const chatDisclaimer = "Remember to include a disclaimer that this information is for educational purposes only and not a substitute for professional medical advice, diagnosis, or treatment."

// Chat wraps a user's health question. The disclaimer instruction is part of
// the prompt itself; replies are never post-processed.
func Chat(query string) string {
	var b strings.Builder

	b.WriteString("You are an advanced health AI assistant. Provide detailed information, predictions, or insights on the following health-related query:\n\n")
	b.WriteString(query)
	b.WriteString("\n\n")

	aspects := strings.Join(ChatAspects[:len(ChatAspects)-1], ", ") + ", and " + ChatAspects[len(ChatAspects)-1]
	b.WriteString(fmt.Sprintf("Consider various aspects such as %s. ", aspects))
	b.WriteString("If asked for predictions, base them on current scientific understanding and trends. Include relevant statistics or data if applicable.\n\n")

	b.WriteString(chatDisclaimer)
	return b.String()
}

// ImageAnalysis is the fixed instruction sent alongside an uploaded image.
func ImageAnalysis() string {
	return "Analyze this health-related image and provide insights. Describe what you see and any potential health implications."
}

// SymptomChecker expects a non-empty list; callers validate first.
func SymptomChecker(symptoms []string) string {
	return fmt.Sprintf(
		"Given the following symptoms: %s, what are some possible conditions to be aware of? Provide a brief overview and recommend when to seek professional medical advice.",
		strings.Join(symptoms, ", "),
	)
}

func Meditation(kind MeditationType, minutes int) string {
	return fmt.Sprintf(
		"Provide a %d-minute guided meditation script for %s. Include clear instructions and calming language.",
		minutes, kind.Label(),
	)
}

// NutritionPlan omits the restriction clause entirely when there are none.
func NutritionPlan(goal NutritionGoal, restrictions []string) string {
	var b strings.Builder

	b.WriteString("Create a one-day meal plan for ")
	b.WriteString(goal.Label())
	if len(restrictions) > 0 {
		b.WriteString(" with the following restrictions: ")
		b.WriteString(strings.Join(restrictions, ", "))
	}
	b.WriteString(". Include breakfast, lunch, dinner, and two snacks with approximate calorie counts.")

	return b.String()
}
