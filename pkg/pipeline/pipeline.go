// Package pipeline chains preprocessing steps with a final classifier.
package pipeline

// Transformer is the fit/transform pattern implemented by preprocessing steps.
type Transformer interface {
	Fit(X [][]float64) error
	Transform(X [][]float64) ([][]float64, error)
}

// Classifier is the estimator placed at the end of a pipeline.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
}

// Pipeline applies each transformer in order, then the classifier.
type Pipeline struct {
	steps []Transformer
	clf   Classifier
}

// New builds a pipeline ending in clf.
func New(clf Classifier, steps ...Transformer) *Pipeline {
	return &Pipeline{steps: steps, clf: clf}
}

// Fit fits every step on the progressively transformed data, then the classifier.
func (p *Pipeline) Fit(X [][]float64, y []int) error {
	z, err := p.fitTransform(X)
	if err != nil {
		return err
	}
	return p.clf.Fit(z, y)
}

// Predict transforms X through the fitted steps and classifies it.
func (p *Pipeline) Predict(X [][]float64) ([]int, error) {
	z, err := p.transform(X)
	if err != nil {
		return nil, err
	}
	return p.clf.Predict(z)
}

func (p *Pipeline) fitTransform(X [][]float64) ([][]float64, error) {
	var err error
	for _, step := range p.steps {
		if err = step.Fit(X); err != nil {
			return nil, err
		}
		if X, err = step.Transform(X); err != nil {
			return nil, err
		}
	}
	return X, nil
}

func (p *Pipeline) transform(X [][]float64) ([][]float64, error) {
	var err error
	for _, step := range p.steps {
		if X, err = step.Transform(X); err != nil {
			return nil, err
		}
	}
	return X, nil
}
