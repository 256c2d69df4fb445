// Package compose builds the ffmpeg video filter chain that reframes a
// clip for a target aspect ratio.
package compose

import (
	"fmt"

	"shortforge/internal/models"
	"shortforge/internal/pkg/errors"
)

// Portrait canvas dimensions.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1920
)

// VideoFilter returns the filter chain for the requested ratio, or the
// empty string for passthrough.
//
// The two strategies are intentionally asymmetric: portrait output
// letterboxes the full frame onto a black 1080x1920 canvas, landscape
// output center-crops instead of padding. Do not unify them.
func VideoFilter(ratio models.AspectRatio, srcWidth, srcHeight int) (string, error) {
	switch ratio {
	case models.AspectPortrait:
		return portraitFilter(), nil
	case models.AspectLandscape:
		return landscapeFilter(srcWidth, srcHeight), nil
	case models.AspectOriginal:
		return "", nil
	default:
		return "", errors.ValidationField("aspect_ratio", fmt.Sprintf("unsupported aspect ratio %q", ratio))
	}
}

// portraitFilter scales the clip to the canvas width, trims anything
// taller than the canvas, and pads the rest onto black, centered both ways.
func portraitFilter() string {
	return fmt.Sprintf(
		"scale=%d:-2,crop=%d:'min(ih,%d)',pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		CanvasWidth, CanvasWidth, CanvasHeight, CanvasWidth, CanvasHeight,
	)
}

// landscapeFilter center-crops vertically when the source is taller than
// the 16:9 height derived from its own width. Sources already at or below
// that height pass through untouched.
func landscapeFilter(srcWidth, srcHeight int) string {
	target := landscapeTargetHeight(srcWidth)
	if srcHeight <= target {
		return ""
	}
	return fmt.Sprintf("crop=iw:%d:0:(ih-%d)/2", target, target)
}

// landscapeTargetHeight is width*9/16 rounded down to an even value, since
// H.264 encodes require even dimensions.
func landscapeTargetHeight(srcWidth int) int {
	h := srcWidth * 9 / 16
	return h - h%2
}
