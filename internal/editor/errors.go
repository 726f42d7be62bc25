package editor

import "errors"

// ErrNoProjectStore is returned by project operations on a session created
// without a repository.
var ErrNoProjectStore = errors.New("editor: no project store configured")
