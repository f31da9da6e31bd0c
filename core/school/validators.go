package school

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/thinkwise/core"
)

var (
	dayTag  = "day"
	dayText = "invalid day: expected one of Lunedì, Martedì, Mercoledì, Giovedì, Venerdì, Sabato, Domenica"

	timeSlotTag  = "timeslot"
	timeSlotText = "invalid time slot: expected one of 08:00-10:00, 10:00-12:00, 12:00-14:00, 14:00-16:00, 16:00-18:00, 18:00-20:00"

	specializationTag  = "specialization"
	specializationText = "invalid specialization"

	courseTypeTag  = "coursetype"
	courseTypeText = "invalid course type: expected INDIVIDUALE or DI_GRUPPO"

	levelTag  = "level"
	levelText = "invalid level: expected Beginner, Junior or Advanced"

	frequencyTag  = "frequency"
	frequencyText = "invalid frequency: expected \"1 volta a settimana\" or \"2 volte a settimana\""
)

// InitValidators registers the enum validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	register := func(tag, text string, isValid func(string) bool) {
		_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return isValid(fl.Field().String())
		})
		core.RegisterCustomTranslation(validate, translator, tag, text)
	}

	register(dayTag, dayText, func(s string) bool { return Day(s).IsValid() })
	register(timeSlotTag, timeSlotText, func(s string) bool { return TimeSlot(s).IsValid() })
	register(specializationTag, specializationText, func(s string) bool { return Specialization(s).IsValid() })
	register(courseTypeTag, courseTypeText, func(s string) bool { return CourseType(s).IsValid() })
	register(levelTag, levelText, func(s string) bool { return Level(s).IsValid() })
	register(frequencyTag, frequencyText, func(s string) bool { return Frequency(s).IsValid() })
}
