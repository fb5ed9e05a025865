package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs struct-tag validation and reports failures as
// common.ErrValidation with a readable field list.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}

	parts := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		if fe.Param() != "" {
			return fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s: %s", fe.Field(), fe.Tag())
	})
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(parts, ", "))
}
