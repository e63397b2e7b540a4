package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseIDParam reads a numeric path parameter, e.g. /glow-plans/:id.
func ParseIDParam(ctx *gin.Context, name string) (uint, error) {
	idStr := ctx.Param(name)

	if idStr == "" {
		return 0, errors.New("missing path parameter " + name)
	}

	id, err := strconv.ParseUint(idStr, 10, 32)

	if err != nil {
		return 0, errors.New("invalid path parameter " + name)
	}

	return uint(id), nil
}
