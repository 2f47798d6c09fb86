package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/AndrewDonelson/viola-flow/internal/apperr"
)

// errorBody is the JSON shape of every failed request
type errorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// respondError writes err as {"error": CODE, "message": text} with its mapped status
func respondError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal(err)
	}
	// picked up by the access log
	_ = c.Error(err)

	c.AbortWithStatusJSON(apperr.HTTPStatus(appErr), errorBody{
		Error:   appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// songID reads the :id path parameter
func songID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidInput("Invalid ID")
	}
	return id, nil
}

// fieldError names one failed binding rule
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// bindJSON decodes and validates the request body. Validation failures list
// the offending fields in details.
func bindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	appErr := apperr.InvalidInput(err.Error())
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag()})
		}
		return appErr.WithDetails(fields)
	}
	return appErr
}
