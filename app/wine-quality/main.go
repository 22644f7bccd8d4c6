// Command wine-quality trains the 7-level quality classifier on a UCI
// winequality file: rebalance classes to a common target, encode the
// quality labels, split deterministically, train, evaluate and report.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/tsawler/go-vintner/checkpoints"
	"github.com/tsawler/go-vintner/dataprep"
	"github.com/tsawler/go-vintner/layers"
	"github.com/tsawler/go-vintner/optimizer"
	"github.com/tsawler/go-vintner/tabular"
	"github.com/tsawler/go-vintner/training"
	"github.com/tsawler/go-vintner/wine"
)

func main() {
	var (
		dataPath   = flag.String("data", "winequality-red.csv", "path to a UCI winequality csv")
		separator  = flag.String("sep", ";", "csv field separator")
		target     = flag.Int("target", 1000, "per-class row target for rebalancing")
		fraction   = flag.Float64("split", 0.8, "training fraction of the split")
		seed       = flag.Int64("seed", 42, "seed for resampling, splitting and weight init")
		epochs     = flag.Int("epochs", 150, "training epochs")
		curvesPath = flag.String("curves", "", "optional path for a training-curves png")
		modelPath  = flag.String("model", "", "optional path for a json model checkpoint")
	)
	flag.Parse()

	sep, err := parseSeparator(*separator)
	if err != nil {
		log.Fatalln(err)
	}
	records, err := wine.Load(*dataPath, sep)
	if err != nil {
		log.Fatalln(err)
	}
	ds, err := wine.QualityDataset(records)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("loaded %d samples from %s", ds.Len(), *dataPath)

	printSummary(ds)
	printDistribution("raw", ds.Distribution())

	balanced, err := dataprep.Rebalance(ds, *target, *seed)
	if err != nil {
		log.Fatalln(err)
	}
	printDistribution("balanced", balanced.Distribution())

	encoded, oneHot, err := dataprep.EncodeLabels(balanced)
	if err != nil {
		log.Fatalln(err)
	}

	train, test, err := dataprep.Split(encoded, *fraction, *seed)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("split %d/%d train/test rows over %d classes", train.Len(), test.Len(), oneHot.Width())

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
		HiddenLayers: 2,
		HiddenWidth:  64,
		Activation:   layers.ReLU,
		L2Penalty:    1e-4,
		OutputWidth:  oneHot.Width(),
		Loss:         training.CategoricalCrossEntropy,
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

	if *curvesPath != "" {
		if err := training.RenderTrainingCurves(history, "Wine quality training", *curvesPath); err != nil {
			log.Fatalln(err)
		}
		log.Printf("wrote training curves to %s", *curvesPath)
	}

	if *modelPath != "" {
		last := history[len(history)-1]
		cp, err := checkpoints.FromModel(model, checkpoints.TrainingState{
			Epochs:        len(history),
			LearningRate:  optimizer.DefaultAdamConfig().LearningRate,
			FinalLoss:     last.Loss,
			FinalAccuracy: last.Accuracy,
		})
		if err != nil {
			log.Fatalln(err)
		}
		if err := checkpoints.SaveCheckpoint(cp, *modelPath); err != nil {
			log.Fatalln(err)
		}
		log.Printf("wrote model checkpoint to %s", *modelPath)
	}
}

// parseSeparator converts the -sep flag value to a csv field separator.
func parseSeparator(s string) (rune, error) {
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return runes[0], nil
}

func printSummary(ds *tabular.Dataset) {
	summaries, err := tabular.Summarize(ds)
	if err != nil {
		log.Fatalln(err)
	}
	fmt.Println("column                 mean      median    stddev    min       max")
	for _, s := range summaries {
		fmt.Printf("%-22s %-9.3f %-9.3f %-9.3f %-9.3f %-9.3f\n", s.Column, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
	}
}

func printDistribution(name string, dist tabular.Distribution) {
	fmt.Printf("%s class distribution:\n", name)
	for _, label := range sortedKeys(dist) {
		fmt.Printf("  %v: %d\n", label, dist[label])
	}
}

func sortedKeys(dist tabular.Distribution) []float64 {
	keys := make([]float64, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}
