package fixture

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/roach88/hitkit/internal/ir"
)

// Custom validation tags.
const (
	tagView      = "view"
	tagIndex     = "index"
	tagTickOrder = "tick_order"
)

var (
	vOnce  sync.Once
	vInst  *validator.Validate
	vTrans ut.Translator
)

// validate returns the singleton validator with English messages and yaml
// tag names.
func validate() (*validator.Validate, ut.Translator) {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer yaml tag names in messages
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

		_ = v.RegisterValidation(tagView, func(fl validator.FieldLevel) bool {
			_, err := ir.ParseView(fl.Field().String())
			return err == nil
		})
		v.RegisterStructValidation(validateEvent, Event{})
		v.RegisterStructValidation(validateHit, Hit{})

		registerMessage(v, trans, tagView, "{0} must be one of U, V, Z, Y, X")
		registerMessage(v, trans, tagIndex, "{0} must index one of {1} entries")
		registerMessage(v, trans, tagTickOrder, "{0} must be greater than start_tick")

		vInst, vTrans = v, trans
	})
	return vInst, vTrans
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, msg string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field(), fe.Param())
			return t
		},
	)
}

// validateEvent checks that every index in the event points at an entry.
func validateEvent(sl validator.StructLevel) {
	ev := sl.Current().Interface().(Event)

	checkIndex := func(idx *int, n int, field string) {
		if idx != nil && *idx >= n {
			sl.ReportError(*idx, field, field, tagIndex, fmt.Sprint(n))
		}
	}

	for i, w := range ev.Wires {
		checkIndex(w.RawDigit, len(ev.RawDigits), fmt.Sprintf("wires[%d].raw_digit", i))
	}
	for i, h := range ev.Hits {
		checkIndex(h.Wire, len(ev.Wires), fmt.Sprintf("hits[%d].wire", i))
		checkIndex(h.RawDigit, len(ev.RawDigits), fmt.Sprintf("hits[%d].raw_digit", i))
		if h.Wire != nil && *h.Wire >= 0 && *h.Wire < len(ev.Wires) {
			checkIndex(h.ROI, len(ev.Wires[*h.Wire].ROIs), fmt.Sprintf("hits[%d].roi", i))
		}
	}
}

// validateHit checks tick ordering of hits that do not take their ticks
// from a region of interest.
func validateHit(sl validator.StructLevel) {
	h := sl.Current().Interface().(Hit)
	if h.ROI == nil && h.EndTick <= h.StartTick {
		sl.ReportError(h.EndTick, "end_tick", "EndTick", tagTickOrder, "")
	}
}

// ValidationError is one problem found in a fixture.
type ValidationError struct {
	// Field is the path of the offending field, e.g. "events[0].hits[2].wire".
	Field string

	// Message describes the problem.
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors lists every problem found in a fixture.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks f against its struct tags and cross-references.
func Validate(f *File) error {
	v, trans := validate()

	err := v.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{
			Field:   strings.TrimPrefix(fe.Namespace(), "File."),
			Message: fe.Translate(trans),
		})
	}
	return out
}
