package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/gridmatch/model"
)

// Recognizer turns encoded image bytes into text. *ocr.Client implements it.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

type withOCR struct {
	PageSource
	rec Recognizer
}

// WithOCR returns a source that adds a text run over every figure carrying
// image bytes, holding the text rec recognizes in it. The figure itself is
// kept.
func WithOCR(src PageSource, rec Recognizer) PageSource {
	return &withOCR{PageSource: src, rec: rec}
}

func (w *withOCR) Next(ctx context.Context) (*model.Page, error) {
	page, err := w.PageSource.Next(ctx)
	if err != nil {
		return nil, err
	}
	for _, fig := range page.OfKind(model.KindFigure) {
		if len(fig.Image) == 0 {
			continue
		}
		text, err := w.rec.RecognizeImage(fig.Image)
		if err != nil {
			return nil, fmt.Errorf("page %d: figure at %v: %w", page.Number, fig.BBox, err)
		}
		if run, ok := FigureText(fig.BBox, text); ok {
			page.Add(run)
		}
	}
	return page, nil
}

// FigureText lays recognized text out over a figure box, one glyph line per
// non-empty text line, splitting the box height evenly.
func FigureText(box model.BBox, text string) (model.Primitive, bool) {
	var parts []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	if len(parts) == 0 {
		return model.Primitive{}, false
	}

	h := box.Height / float64(len(parts))
	lines := make([]model.TextLine, len(parts))
	for i, l := range parts {
		top := box.Top() - float64(i)*h
		lines[i] = model.TextLine{
			BBox: model.NewBBox(box.Left(), top-h, box.Width, h),
			Text: l,
		}
	}
	return model.NewTextRun(lines...), true
}
