package favicon

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	ico "github.com/sergeymakinen/go-ico"
)

// ConvertICOtoPNG converts an .ico image to .png. Menus render PNG icons
// more reliably than multi-resolution ICO files.
func ConvertICOtoPNG(icoBytes []byte) ([]byte, error) {
	icon, err := ico.Decode(bytes.NewReader(icoBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ICO: %w", err)
	}

	img := gg.NewContextForImage(icon)
	buf := &bytes.Buffer{}
	if err := img.EncodePNG(buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
