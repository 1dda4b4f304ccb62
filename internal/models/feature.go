package models

// Feature names one of the model-backed panels.
type Feature string

const (
	FeatureChat           Feature = "chat"
	FeatureImageAnalysis  Feature = "image_analysis"
	FeatureSymptomChecker Feature = "symptom_checker"
	FeatureMeditation     Feature = "meditation"
	FeatureNutrition      Feature = "nutrition"
)

// PromptRequest is what a feature hands to the gateway. Image is nil for
// text-only features.
type PromptRequest struct {
	Feature    Feature
	TextPrompt string
	Image      []byte
}

type SymptomRequest struct {
	Symptoms []string `json:"symptoms"`
}

type MeditationRequest struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
}

type NutritionRequest struct {
	Goal         string   `json:"goal"`
	Restrictions []string `json:"restrictions"`
}

type FeedbackRequest struct {
	Message string `json:"message"`
}

// TextResponse is the generic reply of a one-shot feature.
type TextResponse struct {
	Text string `json:"text"`
}
