package archive

import (
	"fmt"

	"github.com/newthinker/stocksim/internal/core"
)

// Open creates the sink named by kind: "localfs" rooted at path, or "s3".
func Open(kind, path string, s3cfg S3Config) (Sink, error) {
	switch kind {
	case "", "localfs":
		return NewLocalFS(path)
	case "s3":
		return NewS3(s3cfg)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type %q", kind))
	}
}
