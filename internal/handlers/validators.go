package handlers

import (
	"errors"

	"github.com/SscSPs/exchange_rates_app/internal/core/normalize"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// apiDateTag validates strings in the dd.MM.yyyy. layout.
const apiDateTag = "apidate"

// RegisterValidators installs the custom binding tags on gin's validator engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation(apiDateTag, validateAPIDate)
}

func validateAPIDate(fl validator.FieldLevel) bool {
	_, err := normalize.ParseDate(fl.Field().String(), normalize.APIDateLayout)
	return err == nil
}
