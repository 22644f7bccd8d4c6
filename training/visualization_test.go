package training

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRenderTrainingCurves(t *testing.T) {
	history := []EpochMetrics{
		{Epoch: 0, Loss: 1.9, Accuracy: 0.30, Duration: time.Millisecond},
		{Epoch: 1, Loss: 1.2, Accuracy: 0.55, Duration: time.Millisecond},
		{Epoch: 2, Loss: 0.8, Accuracy: 0.70, Duration: time.Millisecond},
		{Epoch: 3, Loss: 0.5, Accuracy: 0.85, Duration: time.Millisecond},
	}

	path := filepath.Join(t.TempDir(), "curves.png")
	if err := RenderTrainingCurves(history, "test run", path); err != nil {
		t.Fatalf("RenderTrainingCurves failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("rendered file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("rendered file is empty")
	}
}

func TestRenderTrainingCurvesTooShort(t *testing.T) {
	history := []EpochMetrics{{Epoch: 0, Loss: 1, Accuracy: 0.5}}
	path := filepath.Join(t.TempDir(), "curves.png")
	if err := RenderTrainingCurves(history, "test run", path); err == nil {
		t.Error("expected error for a single-epoch history")
	}
}
