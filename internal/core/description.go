package core

import (
	"fmt"
	"regexp"
	"strings"
)

// DescriptionCode identifies which rule a description failed.
type DescriptionCode string

const (
	CodeEmptyDescription  DescriptionCode = "EMPTY_DESCRIPTION"
	CodeTooLong           DescriptionCode = "TOO_LONG"
	CodeInvalidCharacters DescriptionCode = "INVALID_CHARACTERS"
	CodeNumericOnly       DescriptionCode = "NUMERIC_ONLY"
	CodeDigitRunTooLong   DescriptionCode = "DIGIT_RUN_TOO_LONG"
	CodeTooManyWords      DescriptionCode = "TOO_MANY_WORDS"
	CodeWordTooLong       DescriptionCode = "WORD_TOO_LONG"
	CodeDuplicateWord     DescriptionCode = "DUPLICATE_WORD"
	CodeRepeatedLetter    DescriptionCode = "REPEATED_LETTER"
)

// DescriptionError reports the first rule an activity description broke.
type DescriptionError struct {
	Code    DescriptionCode
	Message string
}

func (e *DescriptionError) Error() string {
	return fmt.Sprintf("invalid description (%s): %s", e.Code, e.Message)
}

const (
	maxDescriptionLength = 60
	maxWordLength        = 15
	maxWords             = 5
	maxDigitRun          = 10
)

var (
	validDescriptionChars = regexp.MustCompile(`^[a-zA-Z0-9áéíóúÁÉÍÓÚñÑ\s]+$`)
	numericOnly           = regexp.MustCompile(`^\d+$`)
	longDigitRun          = regexp.MustCompile(`\d{11,}`)
)

// ValidateDescription checks an activity description against the rule
// whitelist, in order, first failure wins. It returns a
// *DescriptionError with the failing rule's code, or nil when every
// rule passes. The function is pure: re-validating the same text always
// yields the same result.
func ValidateDescription(text string) error {
	if strings.TrimSpace(text) == "" {
		return &DescriptionError{CodeEmptyDescription, "description cannot be empty"}
	}

	text = strings.TrimSpace(text)

	if len([]rune(text)) > maxDescriptionLength {
		return &DescriptionError{CodeTooLong,
			fmt.Sprintf("description cannot exceed %d characters", maxDescriptionLength)}
	}
	if !validDescriptionChars.MatchString(text) {
		return &DescriptionError{CodeInvalidCharacters, "only letters, digits and spaces are allowed"}
	}
	if numericOnly.MatchString(text) {
		return &DescriptionError{CodeNumericOnly, "description cannot be only a number"}
	}
	if longDigitRun.MatchString(text) {
		return &DescriptionError{CodeDigitRunTooLong,
			fmt.Sprintf("numbers cannot have more than %d consecutive digits", maxDigitRun)}
	}

	words := strings.Fields(text)
	if len(words) > maxWords {
		return &DescriptionError{CodeTooManyWords,
			fmt.Sprintf("description cannot have more than %d words", maxWords)}
	}

	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		if len([]rune(word)) > maxWordLength {
			return &DescriptionError{CodeWordTooLong,
				fmt.Sprintf("each word can have at most %d characters", maxWordLength)}
		}
		lower := strings.ToLower(word)
		if _, dup := seen[lower]; dup {
			return &DescriptionError{CodeDuplicateWord, "words cannot repeat in the description"}
		}
		seen[lower] = struct{}{}
		if hasRepeatedLetter(word) {
			return &DescriptionError{CodeRepeatedLetter,
				"the same letter cannot repeat more than twice in a row"}
		}
	}

	return nil
}

// hasRepeatedLetter reports whether any letter appears three or more
// times consecutively. Go's regexp has no backreferences, so this is a
// rune scan.
func hasRepeatedLetter(word string) bool {
	var prev rune
	run := 0
	for _, r := range word {
		if r == prev && isDescriptionLetter(r) {
			run++
			if run >= 3 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

func isDescriptionLetter(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return strings.ContainsRune("áéíóúÁÉÍÓÚñÑ", r)
}
