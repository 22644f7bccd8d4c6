package training

import (
	"fmt"
	"os"

	chart "github.com/wcharczuk/go-chart"
)

// RenderTrainingCurves renders the per-epoch loss and accuracy history to
// a PNG file. Loss is drawn against the primary Y axis, accuracy against
// the secondary one so both curves stay readable.
func RenderTrainingCurves(history []EpochMetrics, title, path string) error {
	if len(history) < 2 {
		return fmt.Errorf("training curves need at least 2 epochs, got %d", len(history))
	}

	epochs := make([]float64, len(history))
	losses := make([]float64, len(history))
	accuracies := make([]float64, len(history))
	for i, m := range history {
		epochs[i] = float64(m.Epoch)
		losses[i] = m.Loss
		accuracies[i] = m.Accuracy
	}

	graph := chart.Chart{
		Title:      title,
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "Epoch",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxis: chart.YAxis{
			Name:      "Loss",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		YAxisSecondary: chart.YAxis{
			Name:      "Accuracy",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "training loss",
				XValues: epochs,
				YValues: losses,
			},
			chart.ContinuousSeries{
				Name:    "training accuracy",
				YAxis:   chart.YAxisSecondary,
				XValues: epochs,
				YValues: accuracies,
			},
		},
	}
	graph.Elements = []chart.Renderable{
		chart.Legend(&graph),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("failed to render training curves: %v", err)
	}
	return nil
}
