package types

import "image"

// Box is a half-open pixel rectangle [X0,X1) x [Y0,Y1) relative to the
// top-left corner of an image.
type Box struct {
	X0 int `json:"x0"`
	X1 int `json:"x1"`
	Y0 int `json:"y0"`
	Y1 int `json:"y1"`
}

// Width returns X1-X0.
func (b Box) Width() int { return b.X1 - b.X0 }

// Height returns Y1-Y0.
func (b Box) Height() int { return b.Y1 - b.Y0 }

// Empty reports whether the box has no area.
func (b Box) Empty() bool { return b.X1 <= b.X0 || b.Y1 <= b.Y0 }

// Rect converts the box to an image.Rectangle in the coordinate space of an
// image whose bounds start at origin.
func (b Box) Rect(origin image.Point) image.Rectangle {
	return image.Rect(b.X0, b.Y0, b.X1, b.Y1).Add(origin)
}

// Within reports whether the box lies inside a width x height image.
func (b Box) Within(width, height int) bool {
	return 0 <= b.X0 && b.X0 <= b.X1 && b.X1 <= width &&
		0 <= b.Y0 && b.Y0 <= b.Y1 && b.Y1 <= height
}

// Status is the outcome of processing one file in a batch.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// FileResult describes what happened to one input file.
type FileResult struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	OutputPath string `json:"output_path,omitempty"`
	Box        *Box   `json:"box,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Failure names a file that could not be cropped and why.
type Failure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Summary is the result of a batch run.
type Summary struct {
	InputDir  string       `json:"input_dir"`
	OutputDir string       `json:"output_dir"`
	Attempted int          `json:"attempted"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []FileResult `json:"results"`
	Failures  []Failure    `json:"failures"`
}

// OK reports whether every attempted file was cropped.
func (s Summary) OK() bool {
	return s.Failed == 0
}
