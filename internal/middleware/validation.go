package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/flashclass/internal/app/models/dto"
	"github.com/yigit/flashclass/internal/pkg/apperrors"
	"github.com/yigit/flashclass/internal/pkg/validation"
)

// RegisterValidators installs the custom rules into gin's binding engine
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return validation.Register(v)
}

// BindJSON binds the request body into obj. On failure it writes a 400 response and
// returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	return bind(c, obj, c.ShouldBindJSON)
}

// BindQuery binds query parameters into obj the same way BindJSON binds bodies
func BindQuery(c *gin.Context, obj interface{}) bool {
	return bind(c, obj, c.ShouldBindQuery)
}

func bind(c *gin.Context, obj interface{}, fn func(interface{}) error) bool {
	err := fn(obj)
	if err == nil {
		return true
	}
	if _, ok := err.(validator.ValidationErrors); ok {
		HandleAPIError(c, validation.Translate(err))
		return false
	}
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format")
	errorDetail = errorDetail.WithDetails(err.Error())
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
	return false
}

// ValidationError writes a 400 response for a single field
func ValidationError(c *gin.Context, field, msg string) {
	HandleAPIError(c, apperrors.NewValidationError(map[string]string{field: msg}))
}
