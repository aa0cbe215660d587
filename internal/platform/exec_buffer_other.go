//go:build !((linux || darwin) && (amd64 || arm64))

package platform

// mmapCodeSegment/munmapCodeSegment have no implementation outside
// linux/darwin on amd64/arm64, matching spec.md §1's Non-goal of
// portability beyond those two architectures.
func mmapCodeSegment(code []byte) ([]byte, error) {
	return nil, ErrUnsupportedPlatform
}

func munmapCodeSegment(mem []byte) error {
	return ErrUnsupportedPlatform
}
