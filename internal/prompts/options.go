package prompts

import "fmt"

type MeditationType string

const (
	Mindfulness  MeditationType = "mindfulness"
	StressRelief MeditationType = "stress_relief"
	SleepAid     MeditationType = "sleep_aid"
)

var meditationLabels = map[MeditationType]string{
	Mindfulness:  "Mindfulness",
	StressRelief: "Stress Relief",
	SleepAid:     "Sleep Aid",
}

func (m MeditationType) Label() string {
	return meditationLabels[m]
}

func ParseMeditationType(s string) (MeditationType, error) {
	m := MeditationType(s)
	if _, ok := meditationLabels[m]; !ok {
		return "", fmt.Errorf("unknown meditation type %q", s)
	}
	return m, nil
}

// Meditation sessions are offered in this range of whole minutes.
const (
	MinMeditationMinutes = 5
	MaxMeditationMinutes = 30
)

type NutritionGoal string

const (
	WeightLoss   NutritionGoal = "weight_loss"
	MuscleGain   NutritionGoal = "muscle_gain"
	BalancedDiet NutritionGoal = "balanced_diet"
)

var goalLabels = map[NutritionGoal]string{
	WeightLoss:   "Weight Loss",
	MuscleGain:   "Muscle Gain",
	BalancedDiet: "Balanced Diet",
}

func (g NutritionGoal) Label() string {
	return goalLabels[g]
}

func ParseNutritionGoal(s string) (NutritionGoal, error) {
	g := NutritionGoal(s)
	if _, ok := goalLabels[g]; !ok {
		return "", fmt.Errorf("unknown nutrition goal %q", s)
	}
	return g, nil
}
