package model

// Classifier is a supervised learning model over integer class labels.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
}

// Scorer additionally exposes raw per-class decision values.
// The inner slice has one entry per class, or a single entry for binary models.
type Scorer interface {
	Classifier
	DecisionFunction(X [][]float64) ([][]float64, error)
}

// Clusterer is for unsupervised partitioning.
type Clusterer interface {
	Fit(X [][]float64) error
	Predict(X [][]float64) ([]int, error) // cluster assignments
}

// Transformer is for preprocessing steps (fit on train, transform both).
type Transformer interface {
	Fit(X [][]float64) error
	Transform(X [][]float64) ([][]float64, error)
}
