// Package detector guesses the language of a text, limited to the languages
// the hub offers.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/transhub/internal/language"
)

type Detector struct {
	detector lingua.LanguageDetector
	codes    map[lingua.Language]string
}

// New builds a detector for the registry's languages. Languages lingua does
// not know (Haitian Creole, Amharic) are left out. Building is expensive;
// reuse the instance.
func New(reg *language.Registry) *Detector {
	byISO := make(map[string]lingua.Language)
	for _, l := range lingua.AllLanguages() {
		byISO[strings.ToLower(l.IsoCode639_1().String())] = l
	}

	codes := make(map[lingua.Language]string)
	var langs []lingua.Language
	for _, e := range reg.Entries() {
		if l, ok := byISO[e.Code]; ok {
			langs = append(langs, l)
			codes[l] = e.Code
		}
	}

	var builder lingua.LanguageDetectorBuilder
	if len(langs) < 2 {
		// lingua needs at least two candidates
		builder = lingua.NewLanguageDetectorBuilder().FromAllLanguages()
		for iso, l := range byISO {
			codes[l] = iso
		}
	} else {
		builder = lingua.NewLanguageDetectorBuilder().FromLanguages(langs...)
	}

	return &Detector{detector: builder.Build(), codes: codes}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectCode returns the registry code of the detected language.
func (d *Detector) DetectCode(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	code, ok := d.codes[lang]
	return code, ok
}
