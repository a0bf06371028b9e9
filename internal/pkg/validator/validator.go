// Package validator checks `validate` struct tags and reports failures per
// field, keyed by the field's JSON name.
package validator

import (
	"errors"
	"net/mail"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	playground "github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var errNoTranslator = errors.New("validator: english translator unavailable")

type Validator interface {
	Validate(data any) error
}

// FieldErrors maps a JSON field name to a readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Playground implements Validator on go-playground/validator with English messages.
type Playground struct {
	validate *playground.Validate
	trans    ut.Translator
}

func New() (*Playground, error) {
	validate := playground.New(playground.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)

	lang := en.New()
	trans, ok := ut.New(lang, lang).GetTranslator("en")
	if !ok {
		return nil, errNoTranslator
	}
	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerMailbox(validate, trans); err != nil {
		return nil, err
	}

	return &Playground{validate: validate, trans: trans}, nil
}

func (p *Playground) Validate(data any) error {
	err := p.validate.Struct(data)

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(p.trans)
	}
	return out
}

// jsonName reports the name a client sees, so error keys match the payload.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// registerMailbox adds the "mailbox" rule: a bare address or the
// `Shop <orders@shop.example>` form accepted as an email From header.
func registerMailbox(validate *playground.Validate, trans ut.Translator) error {
	err := validate.RegisterValidation("mailbox", func(fl playground.FieldLevel) bool {
		_, err := mail.ParseAddress(fl.Field().String())
		return err == nil
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("mailbox", trans,
		func(t ut.Translator) error {
			return t.Add("mailbox", "{0} must be an address like `Shop <orders@shop.example>`", true)
		},
		func(t ut.Translator, fe playground.FieldError) string {
			msg, err := t.T("mailbox", fe.Field())
			if err != nil {
				return fe.Field() + " must be a mailbox"
			}
			return msg
		},
	)
}
