package app

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// jpegQuality качество кодирования снимков и повторного кодирования растра
const jpegQuality = 90

// copyFrame переносит кадр в собственный RGBA-буфер исходного размера,
// чтобы поток камеры можно было закрыть.
func copyFrame(frame image.Image) *image.RGBA {
	bounds := frame.Bounds()
	raster := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(raster, raster.Bounds(), frame, bounds.Min, draw.Src)
	return raster
}

// encodeJPEG кодирует растр в JPEG с качеством 90
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeRaster пытается разобрать выбранный файл в растр.
// Форматы без декодера (bmp, webp) остаются без растра.
func decodeRaster(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}
