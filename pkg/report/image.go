package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Default dimensions for images that arrive without a size.
const (
	DefaultImageWidth  = 600
	DefaultImageHeight = 300
)

// Image is a diagram captured upstream as raster bytes. Width and Height
// are the original pixel dimensions; Section routes the image to a report
// section.
type Image struct {
	Name    string
	Data    []byte
	Width   int
	Height  int
	Section SectionID
}

type imageJSON struct {
	Name    string `json:"name"`
	Data    string `json:"data"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Section string `json:"section"`
}

// UnmarshalJSON decodes the wire form, whose data is base64 and may carry
// a data URL prefix. Undecodable data leaves Data empty so renderers show
// a placeholder instead of failing the export.
func (img *Image) UnmarshalJSON(b []byte) error {
	var w imageJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*img = Image{Name: w.Name, Width: w.Width, Height: w.Height, Section: SectionID(w.Section)}
	data := w.Data
	if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len(";base64,"):]
	}
	if raw, err := base64.StdEncoding.DecodeString(data); err == nil {
		img.Data = raw
	}
	return nil
}

// MarshalJSON encodes the wire form.
func (img Image) MarshalJSON() ([]byte, error) {
	return json.Marshal(imageJSON{
		Name:    img.Name,
		Data:    base64.StdEncoding.EncodeToString(img.Data),
		Width:   img.Width,
		Height:  img.Height,
		Section: string(img.Section),
	})
}

// Size returns the original dimensions, substituting the defaults for
// missing values.
func (img Image) Size() (w, h float64) {
	w, h = float64(img.Width), float64(img.Height)
	if w <= 0 {
		w = DefaultImageWidth
	}
	if h <= 0 {
		h = DefaultImageHeight
	}
	return w, h
}

// Fit scales (w, h) to fit within maxW x maxH, never upscaling, and rounds
// the result to whole units.
func Fit(w, h, maxW, maxH float64) (dw, dh float64) {
	scale := math.Min(math.Min(maxW/w, maxH/h), 1)
	return math.Round(w * scale), math.Round(h * scale)
}

// ImagesFor returns the images routed to a section, in input order.
func ImagesFor(imgs []Image, id SectionID) []Image {
	var out []Image
	for _, img := range imgs {
		if img.Section == id {
			out = append(out, img)
		}
	}
	return out
}

// NormalizePNG decodes any supported raster format (PNG, JPEG, GIF, BMP,
// TIFF, WebP) and re-encodes it as PNG.
func NormalizePNG(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeConfig reports the pixel size of encoded image data without
// decoding the whole image.
func DecodeConfig(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	return cfg, err
}

var captionPrefixRe = regexp.MustCompile(`(?i)^(CI/CD|Git Flow|Deploy|Version):\s*`)

// Caption returns the display caption of an image: the cleaned name with
// any "CI/CD:", "Git Flow:", "Deploy:" or "Version:" prefix removed.
func (img Image) Caption() string {
	return captionPrefixRe.ReplaceAllString(Clean(img.Name), "")
}

// Placeholder is the text shown instead of an undecodable image.
func (img Image) Placeholder() string {
	return "[Image unavailable: " + Clean(img.Name) + "]"
}
