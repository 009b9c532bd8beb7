package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

// PreviewWidth is the width of the overlay preview image.
const PreviewWidth = 480

// CheckSupportedFile reports whether filename has an image extension the
// scanner accepts.
func CheckSupportedFile(filename string) (bool, string) {
	supportedFileTypes := map[string]bool{
		".png":  true,
		".jpeg": true,
		".jpg":  true,
		".gif":  true,
	}

	fileExtension := strings.ToLower(filepath.Ext(filename))
	return supportedFileTypes[fileExtension], fileExtension
}

func generateScanKey() string {
	return fmt.Sprintf("scans/%s.jpg", uuid.New())
}

// readLimited reads r fully, failing when it holds more than max bytes.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %v", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("file size exceeds the maximum allowed size of %d bytes", max)
	}
	return data, nil
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %v", err)
	}
	return img, nil
}

// cleanDocument makes a photographed page easier to read: grayscale,
// stronger contrast and a light sharpen.
func cleanDocument(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 20)
	return imaging.Sharpen(out, 1)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %v", err)
	}
	return buf.Bytes(), nil
}

// previewDataURL downscales img to PreviewWidth and returns it as a JPEG
// data URL. Smaller images are kept at their size.
func previewDataURL(img image.Image) (string, error) {
	if img.Bounds().Dx() > PreviewWidth {
		img = resize.Resize(PreviewWidth, 0, img, resize.Lanczos3)
	}
	data, err := encodeJPEG(img)
	if err != nil {
		return "", err
	}
	return JPEGDataURL(base64.StdEncoding.EncodeToString(data)), nil
}

// JPEGDataURL wraps base64 JPEG data in a data URL.
func JPEGDataURL(b64 string) string {
	return "data:image/jpeg;base64," + b64
}
