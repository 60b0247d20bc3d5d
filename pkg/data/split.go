package data

import "golang.org/x/exp/rand"

// TrainTestSplit shuffles X, y in unison with the supplied generator and
// splits them by testRatio.
func TrainTestSplit(X [][]float64, y []int, testRatio float64, rng *rand.Rand) (XTrain, XTest [][]float64, yTrain, yTest []int) {
	n := len(X)
	indices := rng.Perm(n)
	nTest := int(float64(n) * testRatio)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			yTest = append(yTest, y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			yTrain = append(yTrain, y[idx])
		}
	}
	return
}
