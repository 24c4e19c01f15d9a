package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tsawler/gridmatch/model"
)

// JSONSource decodes page dumps one page at a time. The input is either a
// JSON array of pages or a stream of page objects (one per line, or simply
// concatenated).
//
// A page looks like:
//
//	{"number": 1, "width": 595, "height": 842, "primitives": [
//	  {"kind": "rect", "bbox": [10, 10, 200, 40], "style": {"stroke": "#000000", "fill": [0.7, 1, 0.7]}},
//	  {"kind": "line", "points": [[10, 10], [200, 10]]},
//	  {"kind": "text", "lines": [{"bbox": [12, 20, 80, 30], "text": "TD Code"}]},
//	  {"kind": "figure", "bbox": [100, 12, 120, 38], "image": "<base64>"}
//	]}
type JSONSource struct {
	br      *bufio.Reader
	dec     *json.Decoder
	started bool
	array   bool
	count   int
	closer  io.Closer
}

// NewJSONSource returns a source decoding pages from r.
func NewJSONSource(r io.Reader) *JSONSource {
	br := bufio.NewReader(r)
	return &JSONSource{br: br, dec: json.NewDecoder(br)}
}

// Next decodes the next page. Pages without a number are numbered by
// position.
func (s *JSONSource) Next(ctx context.Context) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.started {
		if err := s.start(); err != nil {
			return nil, err
		}
	}
	if s.array && !s.dec.More() {
		return nil, io.EOF
	}

	var jp jsonPage
	if err := s.dec.Decode(&jp); err != nil {
		if err == io.EOF && !s.array {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("page %d: %w", s.count+1, err)
	}
	s.count++
	if jp.Number == 0 {
		jp.Number = s.count
	}
	return jp.page()
}

// start looks at the first significant byte to tell an array dump from a
// page stream, consuming the opening bracket of an array.
func (s *JSONSource) start() error {
	s.started = true
	for {
		b, err := s.br.ReadByte()
		if err != nil {
			return err
		}
		switch b {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF:
			continue
		}
		if err := s.br.UnreadByte(); err != nil {
			return err
		}
		if b != '[' {
			return nil
		}
		break
	}

	if _, err := s.dec.Token(); err != nil {
		return fmt.Errorf("invalid page dump: %w", err)
	}
	s.array = true
	return nil
}

// Close closes the underlying file when the source owns one.
func (s *JSONSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

type jsonPage struct {
	Number     int             `json:"number"`
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Primitives []jsonPrimitive `json:"primitives"`
}

type jsonPrimitive struct {
	Kind   string       `json:"kind"`
	BBox   []float64    `json:"bbox"`
	Style  *jsonStyle   `json:"style"`
	Points [][2]float64 `json:"points"`
	Lines  []jsonLine   `json:"lines"`
	Text   string       `json:"text"`
	Image  []byte       `json:"image"`
}

type jsonLine struct {
	BBox []float64 `json:"bbox"`
	Text string    `json:"text"`
}

type jsonStyle struct {
	StrokeWidth *float64   `json:"stroke_width"`
	Stroke      *jsonColor `json:"stroke"`
	Fill        *jsonColor `json:"fill"`
}

// jsonColor accepts "#rrggbb", a color name or an [r, g, b] triple in [0, 1].
type jsonColor model.Color

func (c *jsonColor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := model.ParseColor(s)
		if err != nil {
			return err
		}
		*c = jsonColor(parsed)
		return nil
	}
	var rgb []float64
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("invalid color %s", data)
	}
	switch len(rgb) {
	case 1:
		*c = jsonColor(model.Gray(rgb[0]))
	case 3:
		*c = jsonColor{R: rgb[0], G: rgb[1], B: rgb[2]}
	default:
		return fmt.Errorf("invalid color %s: want 1 or 3 components", data)
	}
	return nil
}

func (jp jsonPage) page() (*model.Page, error) {
	page := model.NewPage(jp.Number, jp.Width, jp.Height)
	for i, jprim := range jp.Primitives {
		prim, err := jprim.primitive()
		if err != nil {
			return nil, fmt.Errorf("page %d: primitive %d: %w", jp.Number, i, err)
		}
		page.Add(prim)
	}
	return page, nil
}

func (jp jsonPrimitive) primitive() (model.Primitive, error) {
	kind, ok := model.ParseKind(jp.Kind)
	if !ok {
		return model.Primitive{}, fmt.Errorf("unknown kind %q", jp.Kind)
	}
	style := jp.Style.style()

	switch kind {
	case model.KindRect:
		bbox, err := toBBox(jp.BBox)
		if err != nil {
			return model.Primitive{}, err
		}
		return model.NewRect(bbox, style), nil

	case model.KindLine:
		if len(jp.Points) != 2 {
			if len(jp.BBox) == 4 {
				return model.NewLine(model.Point{X: jp.BBox[0], Y: jp.BBox[1]}, model.Point{X: jp.BBox[2], Y: jp.BBox[3]}, style), nil
			}
			return model.Primitive{}, fmt.Errorf("line needs 2 points, got %d", len(jp.Points))
		}
		return model.NewLine(toPoint(jp.Points[0]), toPoint(jp.Points[1]), style), nil

	case model.KindCurve:
		if len(jp.Points) == 0 {
			return model.Primitive{}, errors.New("curve without points")
		}
		points := make([]model.Point, 0, len(jp.Points))
		for _, pt := range jp.Points {
			points = append(points, toPoint(pt))
		}
		return model.NewCurve(points, style), nil

	case model.KindTextRun:
		lines := make([]model.TextLine, 0, len(jp.Lines)+1)
		for _, l := range jp.Lines {
			bbox, err := toBBox(l.BBox)
			if err != nil {
				return model.Primitive{}, err
			}
			lines = append(lines, model.TextLine{BBox: bbox, Text: l.Text})
		}
		if len(lines) == 0 && jp.Text != "" {
			bbox, err := toBBox(jp.BBox)
			if err != nil {
				return model.Primitive{}, err
			}
			lines = append(lines, model.TextLine{BBox: bbox, Text: jp.Text})
		}
		return model.NewTextRun(lines...), nil

	default:
		bbox, err := toBBox(jp.BBox)
		if err != nil {
			return model.Primitive{}, err
		}
		return model.NewFigure(bbox, jp.Image), nil
	}
}

func (s *jsonStyle) style() model.Style {
	if s == nil {
		return defaultStyle
	}
	var out model.Style
	out.StrokeWidth = 1
	if s.StrokeWidth != nil {
		out.StrokeWidth = *s.StrokeWidth
	}
	if s.Stroke != nil {
		out.Stroked = true
		out.Stroke = model.Color(*s.Stroke)
	}
	if s.Fill != nil {
		out.Filled = true
		out.Fill = model.Color(*s.Fill)
	}
	return out
}

func toBBox(v []float64) (model.BBox, error) {
	if len(v) != 4 {
		return model.BBox{}, fmt.Errorf("bbox needs 4 values, got %d", len(v))
	}
	return model.NewBBoxFromCorners(v[0], v[1], v[2], v[3]), nil
}

func toPoint(v [2]float64) model.Point {
	return model.Point{X: v[0], Y: v[1]}
}
