// Package detection contains the value types produced by the vision
// detection pipeline. Detections are request-scoped: created by a call,
// discarded once the response is formed.
package detection

// BoundingBox locates a detection within the source image.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is a single confidence-filtered prediction. Name is lower-cased
// and trimmed; Confidence is rounded to three decimals.
type Detection struct {
	Name       string      `json:"name"`
	Confidence float64     `json:"confidence"`
	BBox       BoundingBox `json:"bbox"`
}
