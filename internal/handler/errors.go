package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/retention-backend-go/internal/analysis"
	"github.com/jengzang/retention-backend-go/internal/models"
	"github.com/jengzang/retention-backend-go/pkg/response"
)

// respond writes a service report. Reports computed over an empty range
// carry analysis.ErrDivisionUndefined and are still sent with null percentages.
func respond[T any](c *gin.Context, report *models.Report[T], err error) {
	if err == nil {
		response.Success(c, report)
		return
	}
	if report != nil && errors.Is(err, analysis.ErrDivisionUndefined) {
		response.SuccessWithMessage(c, err.Error(), report)
		return
	}
	fail(c, err)
}

// fail maps engine errors to HTTP status codes
func fail(c *gin.Context, err error) {
	var rangeErr *analysis.InvalidRangeError
	switch {
	case errors.As(err, &rangeErr), errors.Is(err, analysis.ErrInvalidParameter):
		response.BadRequest(c, err.Error())
	case errors.Is(err, analysis.ErrUndefinedRatio), errors.Is(err, analysis.ErrEmptyDataset):
		response.UnprocessableEntity(c, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c, err.Error())
	}
}

// splitList flattens repeated and comma separated query values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
