package academy

import (
	"database/sql/driver"
	"reflect"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
)

var (
	endDateTag  = "enddate"
	endDateText = "end date must be after start date"

	maxScoreText = "score cannot exceed the assignment's max score"
)

// NewValidator returns a validator and its translator with both core and academy rules registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	return validate, translator
}

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	// validate null.* fields on their underlying value
	validate.RegisterCustomTypeFunc(nullValue, null.Int64{}, null.String{}, null.Time{}, null.Float64{})

	validate.RegisterStructValidation(cohortStructValidation, CohortDraft{})
	validate.RegisterStructValidation(announcementStructValidation, AnnouncementDraft{})

	core.RegisterCustomTranslation(validate, translator, endDateTag, endDateText)
}

func nullValue(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		if val, err := valuer.Value(); err == nil {
			return val
		}
	}
	return nil
}

func cohortStructValidation(sl validator.StructLevel) {
	draft := sl.Current().Interface().(CohortDraft)
	if !draft.EndDate.Valid {
		return
	}
	start, err := time.Parse(DateLayout, draft.StartDate)
	if err != nil {
		return // reported by the field tags
	}
	end, err := time.Parse(DateLayout, draft.EndDate.String)
	if err != nil {
		return
	}
	if !end.After(start) {
		sl.ReportError(draft.EndDate, "end_date", "EndDate", endDateTag, "")
	}
}

func announcementStructValidation(sl validator.StructLevel) {
	draft := sl.Current().Interface().(AnnouncementDraft)
	if draft.AudienceType == AudienceStream && (!draft.StreamID.Valid || draft.StreamID.Int64 <= 0) {
		sl.ReportError(draft.StreamID, "stream_id", "StreamID", "required", "")
	}
}

// CheckMaxScore validates every grade of bg against the assignment's max score.
func (bg BulkGrade) CheckMaxScore(maxScore int) error {
	flds := make([]core.FieldError, 0)
	for _, g := range bg.Grades {
		if g.GradeScore > float64(maxScore) {
			flds = append(flds, core.FieldError{Field: "grades." + g.UserID.String(), Error: maxScoreText})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
