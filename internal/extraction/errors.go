package extraction

import "errors"

var errNoClient = errors.New("no language model client configured")
