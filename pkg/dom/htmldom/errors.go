package htmldom

import "errors"

var errNoElement = errors.New("markup contains no element")
