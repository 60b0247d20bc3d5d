package main

import (
	"fmt"
	"log"

	"golang.org/x/exp/rand"

	"github.com/yoshoku/rumale-svm/pkg/data"
	"github.com/yoshoku/rumale-svm/pkg/model"
)

func main() {
	fmt.Println("=== Clustered and Random-Recursive SVC on synthetic blobs ===")

	// Four clusters, two interleaved classes: a single linear boundary cannot
	// separate them, the ensembles can.
	rng := rand.New(rand.NewSource(11))
	X, y := data.MakeBlobs([][]float64{{0, 0}, {0, 6}, {6, 6}, {6, 0}}, 0.4, 100, rng)
	for i := range y {
		y[i] = y[i] % 2 // diagonal clusters share a class
	}
	XTrain, XTest, yTrain, yTest := data.TrainTestSplit(X, y, 0.25, rng)

	plain, err := model.NewLinearSVC(model.DefaultLinearSVCConfig())
	if err != nil {
		log.Fatal(err)
	}
	if err := plain.Fit(XTrain, yTrain); err != nil {
		log.Fatal(err)
	}
	pred, err := plain.Predict(XTest)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("LinearSVC           accuracy: %.3f\n", model.Accuracy(yTest, pred))

	ccfg := model.DefaultClusteredSVCConfig()
	ccfg.NClusters = 4
	clustered, err := model.NewClusteredSVC(ccfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := clustered.Fit(XTrain, yTrain); err != nil {
		log.Fatal(err)
	}
	pred, err = clustered.Predict(XTest)
	if err != nil {
		log.Fatal(err)
	}
	prec, rec, f1 := model.PrecisionRecallF1(yTest, pred)
	fmt.Printf("ClusteredSVC        accuracy: %.3f (precision=%.3f recall=%.3f f1=%.3f)\n",
		model.Accuracy(yTest, pred), prec, rec, f1)

	rcfg := model.DefaultRandomRecursiveSVCConfig()
	rcfg.NLayers = 4
	rcfg.Scale = 0.5
	recursive, err := model.NewRandomRecursiveSVC(rcfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := recursive.Fit(XTrain, yTrain); err != nil {
		log.Fatal(err)
	}
	pred, err = recursive.Predict(XTest)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("RandomRecursiveSVC  accuracy: %.3f\n", model.Accuracy(yTest, pred))
}
