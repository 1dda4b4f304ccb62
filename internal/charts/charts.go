// Package charts turns a chart selection into a declarative ChartSpec. It
// never draws anything.
package charts

import (
	"errors"
	"fmt"

	"healthmate-backend/internal/models"
)

type ChartType string

const (
	BMIDistribution    ChartType = "bmi_distribution"
	CommonHealthIssues ChartType = "common_health_issues"
)

var ErrUnknownChart = errors.New("unknown chart type")

var builtins = map[ChartType]models.ChartSpec{
	BMIDistribution: {
		Kind:          models.ChartPie,
		Title:         "BMI Distribution",
		CategoryLabel: "BMI Range",
		ValueLabel:    "Percentage",
		Categories:    []string{"Underweight", "Normal", "Overweight", "Obese"},
		Values:        []float64{10, 45, 30, 15},
	},
	CommonHealthIssues: {
		Kind:          models.ChartBar,
		Title:         "Prevalence of Common Health Issues",
		CategoryLabel: "Health Issue",
		ValueLabel:    "Prevalence",
		Categories:    []string{"Hypertension", "Diabetes", "Obesity", "Anxiety", "Depression"},
		Values:        []float64{25, 10, 35, 20, 15},
	},
}

// Types lists the supported chart selections.
func Types() []ChartType {
	return []ChartType{BMIDistribution, CommonHealthIssues}
}

// Build returns the built-in spec for chartType, or one carrying custom's
// categories and values in the given order. Values are not normalized.
func Build(chartType ChartType, custom []models.ChartPoint) (models.ChartSpec, error) {
	base, ok := builtins[chartType]
	if !ok {
		return models.ChartSpec{}, fmt.Errorf("%w: %q", ErrUnknownChart, chartType)
	}

	spec := models.ChartSpec{
		Kind:          base.Kind,
		Title:         base.Title,
		CategoryLabel: base.CategoryLabel,
		ValueLabel:    base.ValueLabel,
	}

	if len(custom) == 0 {
		spec.Categories = append([]string(nil), base.Categories...)
		spec.Values = append([]float64(nil), base.Values...)
		return spec, nil
	}

	spec.Categories = make([]string, len(custom))
	spec.Values = make([]float64, len(custom))
	for i, p := range custom {
		spec.Categories[i] = p.Category
		spec.Values[i] = p.Value
	}
	return spec, nil
}
