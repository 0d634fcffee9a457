package rulepack

import (
	"reflect"
	"strings"
	"sync"

	perr "signalkit/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// decoded shapes; validator tags carry the structural rules, LoadFS the cross references

type rawCore struct {
	Version      int              `yaml:"version" validate:"required,gte=1"`
	Signals      []rawSignal      `yaml:"signals" validate:"required,min=1,unique=Name,dive"`
	Languages    []rawLanguage    `yaml:"languages" validate:"required,min=1,unique=Tag,dive"`
	Lexicons     []rawLexicon     `yaml:"lexicons" validate:"unique=Name,dive"`
	Suppressions []rawSuppression `yaml:"suppressions" validate:"dive"`
}

type rawSignal struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description" validate:"required"`
}

type rawLanguage struct {
	Tag     string   `yaml:"tag" validate:"required"`
	Scripts []string `yaml:"scripts" validate:"required,min=1,dive,required"`
}

type rawLexicon struct {
	Name     string   `yaml:"name" validate:"required"`
	Patterns []string `yaml:"patterns" validate:"required,min=1,dive,required"`
}

type rawSuppression struct {
	When     string   `yaml:"when" validate:"required"`
	Suppress []string `yaml:"suppress" validate:"required,min=1,dive,required"`
}

type rawFragment struct {
	Language string    `yaml:"language" validate:"required"`
	Rules    []rawRule `yaml:"rules" validate:"required,min=1,unique=ID,dive"`
}

type rawRule struct {
	ID            string   `yaml:"id" validate:"required"`
	Signal        string   `yaml:"signal" validate:"required"`
	Pattern       string   `yaml:"pattern" validate:"required"`
	Excerpt       string   `yaml:"excerpt" validate:"omitempty,oneof=from after sentence field"`
	Sources       []string `yaml:"sources" validate:"omitempty,dive,required"`
	NotPrecededBy []string `yaml:"not_preceded_by" validate:"omitempty,dive,required"`
	NotFollowedBy []string `yaml:"not_followed_by" validate:"omitempty,dive,required"`
}

var (
	vOnce  sync.Once
	vInst  *validator.Validate
	vTrans ut.Translator
)

// packValidator is a validator that reports yaml key names with english messages
func packValidator() (*validator.Validate, ut.Translator) {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("yaml")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		vInst, vTrans = v, trans
	})
	return vInst, vTrans
}

// validate checks one decoded fragment and reports the first failure with its yaml path
func validate(file string, v any) error {
	val, trans := packValidator()
	err := val.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		ns := fe.Namespace()
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "rulepack: %s: %s: %s", file, ns, fe.Translate(trans)), ns)
	}
	return perr.Wrapf(err, perr.ErrorCodeValidation, "rulepack: %s", file)
}
