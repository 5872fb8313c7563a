//go:build !linux

package raspberry

// openMem is only available on linux.
func openMem() (GPIO, error) {
	return nil, ErrUnsupported
}

// openChip is only available on linux.
func openChip(string) (GPIO, error) {
	return nil, ErrUnsupported
}
