package stores

import (
	"fmt"
)

type ValidationError struct {
	Reason string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("creation of store failed for reason : %s", ve.Reason)
}
