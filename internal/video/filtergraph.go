package video

import (
	"fmt"
	"strings"
)

// Stage is one node of an ffmpeg filter graph: named inputs, a filter
// expression, and a named output.
type Stage struct {
	Inputs []string
	Filter string
	Output string
}

func (s Stage) render() string {
	var b strings.Builder
	for _, in := range s.Inputs {
		b.WriteString("[" + in + "]")
	}
	b.WriteString(s.Filter)
	b.WriteString("[" + s.Output + "]")
	return b.String()
}

// FilterGraph is the slideshow filter pipeline: one scale/set-aspect stage
// per image followed by a single concat stage. Building it as structured
// stages lets the composer validate shape before handing ffmpeg a string.
type FilterGraph struct {
	stages     []Stage
	imageCount int
}

// NewSlideshowGraph builds the filter graph for imageCount still inputs
// scaled to width x height and concatenated in input order with hard cuts.
func NewSlideshowGraph(imageCount, width, height int) (*FilterGraph, error) {
	if imageCount <= 0 {
		return nil, fmt.Errorf("slideshow graph needs at least one image, got %d", imageCount)
	}

	stages := make([]Stage, 0, imageCount+1)
	concatInputs := make([]string, 0, imageCount)

	for i := 0; i < imageCount; i++ {
		out := fmt.Sprintf("v%d", i)
		stages = append(stages, Stage{
			Inputs: []string{fmt.Sprintf("%d:v", i)},
			Filter: fmt.Sprintf("scale=%d:%d,setsar=1", width, height),
			Output: out,
		})
		concatInputs = append(concatInputs, out)
	}

	stages = append(stages, Stage{
		Inputs: concatInputs,
		Filter: fmt.Sprintf("concat=n=%d:v=1:a=0", imageCount),
		Output: "video",
	})

	return &FilterGraph{stages: stages, imageCount: imageCount}, nil
}

// Validate checks the graph shape against the number of image inputs the
// composer is about to feed ffmpeg.
func (g *FilterGraph) Validate(imageCount int) error {
	if g.imageCount != imageCount {
		return fmt.Errorf("filter graph built for %d images, got %d inputs", g.imageCount, imageCount)
	}
	if len(g.stages) != imageCount+1 {
		return fmt.Errorf("filter graph has %d stages, want %d", len(g.stages), imageCount+1)
	}

	concat := g.stages[len(g.stages)-1]
	if len(concat.Inputs) != imageCount {
		return fmt.Errorf("concat stage has %d inputs, want %d", len(concat.Inputs), imageCount)
	}

	return nil
}

// Output is the label of the final video stream.
func (g *FilterGraph) Output() string {
	return g.stages[len(g.stages)-1].Output
}

func (g *FilterGraph) String() string {
	rendered := make([]string, len(g.stages))
	for i, stage := range g.stages {
		rendered[i] = stage.render()
	}
	return strings.Join(rendered, ";")
}
