package safety

import (
	"errors"
	"fmt"
	"io"
)

// ErrTooLarge indicates content exceeded a configured read limit.
var ErrTooLarge = errors.New("content too large")

// ReadAllWithLimit reads from r and fails if content exceeds limit bytes.
// Used to cap subprocess diagnostic output.
func ReadAllWithLimit(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid read limit: %d", limit)
	}
	lr := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
