package media

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageInfo is what Probe can tell about a file without decoding pixels.
type ImageInfo struct {
	Format   string
	MimeType string
	Width    int
	Height   int
}

var mimeByFormat = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Probe sniffs the image header of the file at path. It rejects files
// that are not a decodable jpeg, png, gif, or webp.
func Probe(path string) (ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%s is not a supported image: %w", path, err)
	}
	mime, ok := mimeByFormat[format]
	if !ok {
		mime = "application/octet-stream"
	}
	return ImageInfo{Format: format, MimeType: mime, Width: cfg.Width, Height: cfg.Height}, nil
}
