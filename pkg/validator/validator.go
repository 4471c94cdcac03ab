package validator

import (
	"log"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterGinValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		if err := v.RegisterValidation("username", usernameValidator); err != nil {
			log.Fatal("register username validator failed")
		}
		if err := v.RegisterValidation("refcode", referralCodeValidator); err != nil {
			log.Fatal("register refcode validator failed")
		}
	}
}

var usernameValidator validator.Func = func(fl validator.FieldLevel) bool {
	matched, err := regexp.MatchString(`^[a-zA-Z0-9_]+$`, fl.Field().String())
	if err != nil {
		return false
	}
	return matched
}

var referralCodeValidator validator.Func = func(fl validator.FieldLevel) bool {
	matched, err := regexp.MatchString(`^CHESS-[A-Z0-9]{6}$`, fl.Field().String())
	if err != nil {
		return false
	}
	return matched
}
