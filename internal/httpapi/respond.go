package httpapi

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"rosellea-backend/internal/apperr"
	"rosellea-backend/internal/auth"
	"rosellea-backend/internal/domain"
)

func init() {
	// report json names in validation errors
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// writeError renders err as {success:false, message, errors?}. Only Internal
// failures are logged with their cause; clients get the safe message.
func (s *Server) writeError(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err)
	}
	status := apperr.HTTPStatus(ae.Kind)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).
			Str("request_id", c.GetString(requestIDKey)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
	}
	body := gin.H{"success": false, "message": ae.Message}
	if len(ae.Fields) > 0 {
		body["errors"] = ae.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes and validates the body into dst. An empty body counts as
// "{}" so optional payloads still pass through validation.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.PayloadTooLarge("Request body too large")
	}
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
		if err == nil {
			return nil
		}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.InvalidInput("Validation failed", fieldNames(verrs)...)
	}
	return apperr.InvalidInput("Invalid JSON body")
}

func fieldNames(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		out = append(out, ns)
	}
	return out
}

func currentUser(c *gin.Context) (*domain.User, error) {
	u, ok := auth.UserFrom(c)
	if !ok {
		return nil, apperr.Unauthenticated("Not authorized")
	}
	return u, nil
}

func ok(c *gin.Context, status int, body gin.H) error {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(status, body)
	return nil
}
