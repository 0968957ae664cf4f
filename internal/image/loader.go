package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/swatch/internal/security"
	httputil "github.com/jmylchreest/swatch/internal/util/http"
)

// DefaultMaxBytes caps how much encoded image data a loader will read.
const DefaultMaxBytes int64 = 32 << 20

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(ctx context.Context, path string) (*RGB, error)
}

// Decode decodes an encoded image (JPEG, PNG, GIF, WebP) into an RGB grid.
// It returns the detected format name alongside the image.
func Decode(data []byte) (*RGB, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: buffer is empty", ErrEmptyInput)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode image: %w", ErrInvalidImage, err)
	}

	rgb, err := FromImage(img)
	if err != nil {
		return nil, format, err
	}
	return rgb, format, nil
}

// DecodeReader reads at most maxBytes from r and decodes the result.
// A non-positive maxBytes uses DefaultMaxBytes.
func DecodeReader(r io.Reader, maxBytes int64) (*RGB, string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(security.NewLimitedReader(r, maxBytes))
	if err != nil {
		if errors.Is(err, security.ErrLimitExceeded) {
			return nil, "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
		}
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	return Decode(data)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct {
	MaxBytes int64
}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{MaxBytes: DefaultMaxBytes}
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(_ context.Context, path string) (*RGB, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, _, err := DecodeReader(file, l.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// SmartLoader loads images from both local files and HTTP(S) URLs.
type SmartLoader struct {
	fileLoader *FileLoader
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader() *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
	}
}

// Load loads an image from either a local file path or HTTP(S) URL.
func (l *SmartLoader) Load(ctx context.Context, path string) (*RGB, error) {
	if IsURL(path) {
		return l.loadFromURL(ctx, path)
	}
	return l.fileLoader.Load(ctx, path)
}

// loadFromURL fetches and decodes an image from an HTTP(S) URL.
func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (*RGB, error) {
	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{MaxBytes: l.fileLoader.MaxBytes})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return img, nil
}

// IsURL reports whether path is an HTTP(S) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// ValidateImagePath checks if the given path is valid and points to a
// supported image file or directory. HTTP(S) URLs are accepted as-is and
// fetched later.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	if IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file or directory not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return nil
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// isImageFile checks if a file has a supported image extension.
func isImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// ScanDirectoryForImages scans a directory and returns all valid image files
// in lexical order. It does not recurse into subdirectories, but follows
// symlinks.
func ScanDirectoryForImages(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var imageFiles []string
	for _, entry := range entries {
		fullPath := filepath.Join(dirPath, entry.Name())

		// For symlinks, stat the target to determine if it's a file.
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}
		if isImageFile(entry.Name()) {
			imageFiles = append(imageFiles, fullPath)
		}
	}

	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no supported image files found in directory: %s", dirPath)
	}

	return imageFiles, nil
}
