package models

type ChartKind string

const (
	ChartPie ChartKind = "pie"
	ChartBar ChartKind = "bar"
)

// ChartSpec describes a chart's data independently of how it is drawn.
// Categories and Values always have the same length.
type ChartSpec struct {
	Kind          ChartKind `json:"kind"`
	Title         string    `json:"title"`
	CategoryLabel string    `json:"category_label"`
	ValueLabel    string    `json:"value_label"`
	Categories    []string  `json:"categories"`
	Values        []float64 `json:"values"`
}

// ChartPoint is one caller-supplied category/value pair.
type ChartPoint struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

type ChartRequest struct {
	Data []ChartPoint `json:"data"`
}
