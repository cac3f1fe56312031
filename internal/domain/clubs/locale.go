package clubs

import (
	"strings"
	"time"
	_ "time/tzdata"

	"book-club-go/internal/domain/apperr"
	"golang.org/x/text/language"
)

var supportedLanguages = []language.Tag{language.Swedish, language.English}

var languageMatcher = language.NewMatcher(supportedLanguages)

// NormalizeLanguage maps a BCP 47 tag onto a supported base language
// ("sv" or "en"). Empty input yields the default.
func NormalizeLanguage(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultLanguage, nil
	}

	tag, err := language.Parse(value)
	if err != nil {
		return "", apperr.Invalid("language", "is not a valid language tag")
	}

	_, index, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		return "", apperr.Invalid("language", "is not supported")
	}

	base, _ := supportedLanguages[index].Base()
	return base.String(), nil
}

func NormalizeTimezone(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTimezone, nil
	}
	if _, err := time.LoadLocation(value); err != nil {
		return "", apperr.Invalid("timezone", "is not a known time zone")
	}
	return value, nil
}

func normalizePrivacy(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "":
		return PrivacyClosed, nil
	case PrivacyOpen, PrivacyClosed:
		return value, nil
	default:
		return "", apperr.Invalid("privacy", "must be open or closed")
	}
}
