package stage

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"

	"github.com/phanxgames/village"
)

// flushScreenshots captures the rendered frame for every queued label and
// writes each as a PNG file. Called at the end of Draw.
func (s *Stage) flushScreenshots(screen *ebiten.Image) {
	if len(s.shots) == 0 {
		return
	}
	dir := s.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		village.Log.WithError(err).WithField("dir", dir).Warn("screenshot: mkdir failed")
		s.shots = s.shots[:0]
		return
	}

	bounds := screen.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pixels := make([]byte, 4*w*h)
	screen.ReadPixels(pixels)
	img := unpremultiply(pixels, w, h)

	stamp := s.clock().Format("20060102-150405")
	for _, label := range s.shots {
		path := shotPath(dir, stamp, label)
		if err := savePNG(path, img); err != nil {
			village.Log.WithError(err).Warn("screenshot failed")
			continue
		}
		village.Log.WithFields(logrus.Fields{"path": path}).Info("screenshot saved")
	}
	s.shots = s.shots[:0]
}

// unpremultiply converts premultiplied RGBA pixels to straight-alpha NRGBA.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(pixels) && i+3 < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

// savePNG encodes img in memory and writes it in one call, so a failed encode
// never leaves a truncated file behind.
func savePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// shotPath names a capture village-<stamp>-<label>.png inside dir. The label
// is lowercased and every run of other characters collapses to one dash.
func shotPath(dir, stamp, label string) string {
	words := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	name := "frame"
	if len(words) > 0 {
		name = strings.Join(words, "-")
	}
	return filepath.Join(dir, "village-"+stamp+"-"+name+".png")
}
