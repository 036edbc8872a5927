// Package raster turns PDF pages into cropped, resized JPEG card images.
// Pages are rendered at 150 DPI, trimmed of their uniform border and scaled
// to a fixed width with the aspect ratio preserved.
package raster
