package importer

import "fmt"

// ImportError reports an asset file that could not be turned into a scene.
type ImportError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("import %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("import %s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
