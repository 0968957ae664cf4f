// Package seed provides seed selection for k-means clustering so that
// dominant colour extraction can be made reproducible.
package seed

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"math/rand"
	"slices"
	"strings"
	"time"
)

// Mode determines how the random seed for k-means clustering is generated.
type Mode string

const (
	// ModeRandom uses a non-deterministic seed (varies each run).
	ModeRandom Mode = "random"
	// ModeManual uses a user-provided seed value.
	ModeManual Mode = "manual"
	// ModeContent derives the seed from a hash of the image pixels, so the
	// same photo always yields the same clusters.
	ModeContent Mode = "content"
)

// Config holds configuration for seed generation.
type Config struct {
	Mode  Mode   // Seed mode
	Value *int64 // Seed value (only used when Mode is ModeManual)
}

// Resolve fills in the mode when only a value was given. An empty config
// means random; a bare value means manual.
func (c Config) Resolve() Config {
	if c.Mode == "" {
		if c.Value != nil {
			c.Mode = ModeManual
		} else {
			c.Mode = ModeRandom
		}
	}
	return c
}

// Calculate determines the seed value based on the seed mode.
func Calculate(img image.Image, config Config) (int64, error) {
	config = config.Resolve()
	switch config.Mode {
	case ModeContent:
		if img == nil {
			return 0, fmt.Errorf("image is required for content-based seed mode")
		}
		return CalculateContentSeed(img), nil
	case ModeManual:
		if config.Value == nil {
			return 0, fmt.Errorf("seed value is required for manual seed mode")
		}
		return *config.Value, nil
	case ModeRandom:
		return GenerateRandomSeed(), nil
	default:
		return 0, fmt.Errorf("unknown seed mode: %s", config.Mode)
	}
}

// CalculateContentSeed hashes the image dimensions and a grid of roughly
// 100x100 sampled pixels into a seed.
func CalculateContentSeed(img image.Image) int64 {
	bounds := img.Bounds()
	hasher := sha256.New()

	dimBytes := make([]byte, 8)
	binary.LittleEndian.PutUint32(dimBytes[0:4], uint32(bounds.Dx())) // #nosec G115 -- image dimensions are safe to convert
	binary.LittleEndian.PutUint32(dimBytes[4:8], uint32(bounds.Dy())) // #nosec G115 -- image dimensions are safe to convert
	hasher.Write(dimBytes)

	step := max(bounds.Dx()/100, bounds.Dy()/100, 1)
	pixelBytes := make([]byte, 3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			pixelBytes[0] = byte(r >> 8)
			pixelBytes[1] = byte(g >> 8)
			pixelBytes[2] = byte(b >> 8)
			hasher.Write(pixelBytes)
		}
	}

	hash := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(hash[:8])) // #nosec G115 -- hash conversion is safe
}

// GenerateRandomSeed generates a non-deterministic random seed.
func GenerateRandomSeed() int64 {
	// #nosec G404 -- Random seed generation is intentionally non-deterministic
	return time.Now().UnixNano() + int64(rand.Intn(1000000))
}

// ValidModes returns a list of valid seed modes.
func ValidModes() []Mode {
	return []Mode{ModeRandom, ModeManual, ModeContent}
}

// ParseMode converts a string to a Mode. The empty string is accepted and
// resolved later by Config.Resolve.
func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if mode == "" || slices.Contains(ValidModes(), mode) {
		return mode, nil
	}
	return "", fmt.Errorf("invalid seed mode: %s (valid: random, manual, content)", s)
}
