// Command wine-type trains the binary red/white classifier from the two
// per-color UCI winequality files, balancing the categories before the
// split so neither color dominates the decision boundary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/tsawler/go-vintner/dataprep"
	"github.com/tsawler/go-vintner/engine"
	"github.com/tsawler/go-vintner/layers"
	"github.com/tsawler/go-vintner/optimizer"
	"github.com/tsawler/go-vintner/training"
	"github.com/tsawler/go-vintner/wine"
)

func main() {
	var (
		redPath    = flag.String("red", "winequality-red.csv", "path to the red wine csv")
		whitePath  = flag.String("white", "winequality-white.csv", "path to the white wine csv")
		target     = flag.Int("target", 1500, "per-category row target for rebalancing")
		fraction   = flag.Float64("split", 0.8, "training fraction of the split")
		seed       = flag.Int64("seed", 42, "seed for resampling, splitting and weight init")
		epochs     = flag.Int("epochs", 100, "training epochs")
		curvesPath = flag.String("curves", "", "optional path for a training-curves png")
	)
	flag.Parse()

	red, err := wine.Load(*redPath, ';')
	if err != nil {
		log.Fatalln(err)
	}
	white, err := wine.Load(*whitePath, ';')
	if err != nil {
		log.Fatalln(err)
	}

	records := append(wine.Tagged(red, "red"), wine.Tagged(white, "white")...)
	ds, err := wine.TypeDataset(records)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("loaded %d red and %d white samples", len(red), len(white))

	balanced, err := dataprep.Rebalance(ds, *target, *seed)
	if err != nil {
		log.Fatalln(err)
	}

	encoded, oneHot, err := dataprep.EncodeLabels(balanced)
	if err != nil {
		log.Fatalln(err)
	}

	train, test, err := dataprep.Split(encoded, *fraction, *seed)
	if err != nil {
		log.Fatalln(err)
	}
	trainEnc, err := dataprep.Encode(train, oneHot.Width())
	if err != nil {
		log.Fatalln(err)
	}
	testEnc, err := dataprep.Encode(test, oneHot.Width())
	if err != nil {
		log.Fatalln(err)
	}

	cfg := training.ClassifierConfig{
		FeatureWidth: len(ds.FeatureColumns()),
		HiddenLayers: 1,
		HiddenWidth:  32,
		Activation:   layers.ReLU,
		OutputWidth:  2,
		Loss:         training.BinaryCrossEntropy,
		Epochs:       *epochs,
	}

	model, err := training.BuildClassifier(cfg, *seed)
	if err != nil {
		log.Fatalln(err)
	}
	adam, err := optimizer.NewAdam(optimizer.DefaultAdamConfig())
	if err != nil {
		log.Fatalln(err)
	}
	trainer, err := training.NewTrainer(model, adam, cfg)
	if err != nil {
		log.Fatalln(err)
	}
	trainer.Verbose = true

	history, err := trainer.Fit(context.Background(), trainEnc.Features, trainEnc.Labels)
	if err != nil {
		log.Fatalln(err)
	}

	loss, accuracy, err := trainer.Evaluate(testEnc.Features, testEnc.Labels)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Printf("test loss: %.5f, test accuracy: %.5f\n", loss, accuracy)

	probs, err := model.Predict(testEnc.Features)
	if err != nil {
		log.Fatalln(err)
	}
	printConfusion(probs, testEnc.Labels)

	if *curvesPath != "" {
		if err := training.RenderTrainingCurves(history, "Wine type training", *curvesPath); err != nil {
			log.Fatalln(err)
		}
		log.Printf("wrote training curves to %s", *curvesPath)
	}
}

func printConfusion(probRows, labelRows [][]float64) {
	cm, err := training.NewConfusionMatrix(2)
	if err != nil {
		log.Fatalln(err)
	}
	probs, err := engine.MatrixFromRows(probRows)
	if err != nil {
		log.Fatalln(err)
	}
	labels, err := engine.MatrixFromRows(labelRows)
	if err != nil {
		log.Fatalln(err)
	}
	if err := cm.Update(probs, labels); err != nil {
		log.Fatalln(err)
	}

	names := []string{"red", "white"}
	for class, name := range names {
		fmt.Printf("%s: precision %.3f, recall %.3f\n", name, cm.Precision(class), cm.Recall(class))
	}
}
