package core

// Resolution converts between pixel and physical units for one dataset.
// Pixel sizes are in micrometers per pixel, the time interval in minutes
// between consecutive time points. Immutable; one instance is shared by
// an entire experiment.
type Resolution struct {
	PixelSizeZUm        float64
	PixelSizeYUm        float64
	PixelSizeXUm        float64
	TimeIntervalMinutes float64
}

// NewResolution validates and returns a resolution. All four values must
// be strictly positive.
func NewResolution(zUm, yUm, xUm, intervalMinutes float64) (Resolution, error) {
	if zUm <= 0 || yUm <= 0 || xUm <= 0 || intervalMinutes <= 0 {
		return Resolution{}, ErrBadResolution
	}
	return Resolution{
		PixelSizeZUm:        zUm,
		PixelSizeYUm:        yUm,
		PixelSizeXUm:        xUm,
		TimeIntervalMinutes: intervalMinutes,
	}, nil
}

// IsotropicResolution returns a resolution with the same pixel size on
// every axis. Handy for tests and 2D-ish datasets.
func IsotropicResolution(pixelUm, intervalMinutes float64) (Resolution, error) {
	return NewResolution(pixelUm, pixelUm, pixelUm, intervalMinutes)
}
