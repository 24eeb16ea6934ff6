package validation

import (
	"fmt"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register adds the domain tags (gamemode, selection, money, market) to v
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"gamemode": func(fl validator.FieldLevel) bool {
			_, err := entity.ParseGameMode(fl.Field().String())
			return err == nil
		},
		"selection": func(fl validator.FieldLevel) bool {
			_, err := entity.ParseSelection(fl.Field().String())
			return err == nil
		},
		"money": func(fl validator.FieldLevel) bool {
			_, err := entity.ValidateAndConvertAmount(fl.Field().String())
			return err == nil
		},
		"market": func(fl validator.FieldLevel) bool {
			_, err := entity.ParseMarket(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("registering %s validator: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the domain tags on gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
