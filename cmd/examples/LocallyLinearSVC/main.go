package main

import (
	"fmt"
	"log"

	"golang.org/x/exp/rand"

	"github.com/yoshoku/rumale-svm/pkg/data"
	"github.com/yoshoku/rumale-svm/pkg/model"
	"github.com/yoshoku/rumale-svm/pkg/pipeline"
	"github.com/yoshoku/rumale-svm/pkg/stats"
)

func main() {
	fmt.Println("=== Locally-Linear SVC on synthetic blobs ===")

	// Three well-separated Gaussian clusters in 2-D.
	rng := rand.New(rand.NewSource(7))
	X, y := data.MakeBlobs([][]float64{{0, 0}, {10, 10}, {-10, 10}}, 0.5, 150, rng)
	XTrain, XTest, yTrain, yTest := data.TrainTestSplit(X, y, 0.2, rng)
	fmt.Printf("train=%d test=%d features=%d\n", len(XTrain), len(XTest), len(XTrain[0]))

	cfg := model.DefaultLocallyLinearSVCConfig()
	cfg.NAnchors = 16
	cfg.NNeighbors = 4
	clf, err := model.NewLocallyLinearSVC(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Standardize features, then fit the classifier.
	pipe := pipeline.New(clf, stats.NewStandardScaler())
	if err := pipe.Fit(XTrain, yTrain); err != nil {
		log.Fatal(err)
	}

	pred, err := pipe.Predict(XTest)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("test accuracy: %.3f\n", model.Accuracy(yTest, pred))
	fmt.Printf("classes: %v, anchors: %d\n", clf.Classes, len(clf.Anchors))

	// Snapshot round-trip: dump the trained model and restore it elsewhere.
	blob, err := clf.DumpState()
	if err != nil {
		log.Fatal(err)
	}
	restored, err := model.NewLocallyLinearSVC(model.DefaultLocallyLinearSVCConfig())
	if err != nil {
		log.Fatal(err)
	}
	if err := restored.LoadState(blob); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("snapshot size: %d bytes, restored classes: %v\n", len(blob), restored.Classes)
}
