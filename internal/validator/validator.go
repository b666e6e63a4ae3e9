// Package validator checks that a translation came out in the requested
// target language.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/transhub/internal/detector"
)

// minValidationLength is the rune count below which detection is too
// unreliable to judge.
const minValidationLength = 20

type Validator struct {
	det *detector.Detector
}

func New(det *detector.Detector) *Validator {
	return &Validator{det: det}
}

// Check returns a warning when translatedText looks like a language other
// than targetCode. Short or ambiguous texts pass with no warning.
func (v *Validator) Check(translatedText, targetCode string) string {
	text := strings.TrimSpace(translatedText)
	if targetCode == "" || text == "" {
		return ""
	}
	if len([]rune(text)) < minValidationLength {
		return ""
	}

	detected, ok := v.det.DetectCode(text)
	if !ok {
		return ""
	}
	if !strings.EqualFold(detected, targetCode) {
		return fmt.Sprintf("output looks like %s, expected %s", detected, targetCode)
	}
	return ""
}
