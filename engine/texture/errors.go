package texture

import "fmt"

// TextureDecodeError reports an image that could not be turned into pixels: a missing or
// unreadable file, an unknown format, or an image with zero width or height.
type TextureDecodeError struct {
	Path string
	Err  error
}

func (e *TextureDecodeError) Error() string {
	return fmt.Sprintf("texture %s: %v", e.Path, e.Err)
}

func (e *TextureDecodeError) Unwrap() error {
	return e.Err
}
