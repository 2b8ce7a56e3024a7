package vision

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"vani/internal/llm"
)

// FrameSource yields one JPEG frame per call.
type FrameSource interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Describer pairs a frame source with the vision model.
type Describer struct {
	camera FrameSource
	model  *llm.Client
	log    *slog.Logger
}

// vision answers are short and factual, so generation runs cold
var describeOptions = llm.Options{Temperature: 0.1, NumPredict: 150}

func NewDescriber(camera FrameSource, model *llm.Client, log *slog.Logger) *Describer {
	if log == nil {
		log = slog.Default()
	}
	return &Describer{camera: camera, model: model, log: log}
}

// SeeAndDescribe captures a frame and asks the vision model the given
// question about it.
func (d *Describer) SeeAndDescribe(ctx context.Context, question string) (string, error) {
	frame, err := d.camera.Capture(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "could not capture frame")
	}
	d.log.Debug("frame captured", "bytes", len(frame), "question", question)

	description, err := d.model.GenerateWithImages(ctx, question, [][]byte{frame}, describeOptions)
	if err != nil {
		return "", goerr.Wrap(err, "vision model failed")
	}
	if description == "" {
		return "", goerr.New("vision model returned empty description")
	}

	d.log.Info("scene described", "model", d.model.Model(), "length", len(description))
	return description, nil
}
