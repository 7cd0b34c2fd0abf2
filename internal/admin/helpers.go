package admin

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "duplicate key")
}
