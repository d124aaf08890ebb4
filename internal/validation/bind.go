package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds the request into `out` and runs validation. On
// failure it writes the capture envelope 400 itself and returns an error for
// the handler to short-circuit on. The shopper-facing message stays generic;
// field detail goes to logs only via the returned error.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate) error {
	if err := c.ShouldBind(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"data":    "Missing or invalid required fields",
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"data":    "Missing or invalid required fields",
		})
		return err
	}
	return nil
}

// FieldErrors flattens validator errors into a field -> message map for logs.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error()
		}
	} else if err != nil {
		out["error"] = err.Error()
	}
	return out
}
