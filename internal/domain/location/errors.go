package location

import "errors"

var ErrLocationNotConfigured = errors.New("the restaurant location has not been configured yet")
