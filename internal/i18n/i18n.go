// Package i18n holds the companion's user-facing text for each supported locale.
package i18n

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locale identifies a supported UI language.
type Locale string

const (
	English Locale = "en"
	Catalan Locale = "ca"

	// Default is the locale used when nothing else was chosen.
	Default = English

	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
)

const (
	keySuccess   = "code.success"
	keySlideLink = "slide.link"
)

// Strings is the fixed set of UI text for one locale.
type Strings struct {
	AppTitle         string `json:"appTitle"`
	InputPlaceholder string `json:"inputPlaceholder"`
	UnlockButton     string `json:"unlockButton"`
	SlideLinkText    string `json:"slideLinkText"`
	CodeError        string `json:"codeError"`
	ForgetButton     string `json:"forgetButton"`
	ForgetConfirm    string `json:"forgetConfirm"`
	LoadingLinks     string `json:"loadingLinks"`
	LoadError        string `json:"loadError"`

	successTemplate string
}

var table = map[Locale]Strings{
	English: {
		AppTitle:         `The "Real" Thesis Defense`,
		InputPlaceholder: "Enter secret code...",
		UnlockButton:     "Unlock",
		SlideLinkText:    "Slide Explanation",
		CodeError:        "Oops! Wrong code. Try again.",
		ForgetButton:     "Forget Codes",
		ForgetConfirm:    "Are you sure you want to lock all slides again?",
		LoadingLinks:     "Checking for content...",
		LoadError:        "Sorry, an unexpected error occurred while loading the content.",
		successTemplate:  "Success! %s",
	},
	Catalan: {
		AppTitle:         `La Defensa "Real" de la Tesi`,
		InputPlaceholder: "Introdueix el codi secret...",
		UnlockButton:     "Desbloca",
		SlideLinkText:    "Explicació de la Diapo",
		CodeError:        "Ups! Codi incorrecte. Prova de nou.",
		ForgetButton:     "Oblida els Codis",
		ForgetConfirm:    "Estàs segur que vols tornar a bloquejar totes les diapositives?",
		LoadingLinks:     "Verificant el contingut...",
		LoadError:        "Ho sentim, s'ha produït un error inesperat en carregar el contingut.",
		successTemplate:  "Èxit! %s",
	},
}

var supported = []Locale{English, Catalan}

var (
	supportedTags = []language.Tag{language.English, language.Catalan}
	tagMatcher    = language.NewMatcher(supportedTags)
	messages      = mustBuildCatalog()
)

func mustBuildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for i, loc := range supported {
		s := table[loc]
		tag := supportedTags[i]
		if err := b.SetString(tag, keySuccess, s.successTemplate); err != nil {
			panic(fmt.Sprintf("i18n: register %s: %v", keySuccess, err))
		}
		if err := b.SetString(tag, keySlideLink, s.SlideLinkText+" %d"); err != nil {
			panic(fmt.Sprintf("i18n: register %s: %v", keySlideLink, err))
		}
	}
	return b
}

// Supported returns the supported locales in display order.
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// Valid reports whether l is a supported locale.
func (l Locale) Valid() bool {
	_, ok := table[l]
	return ok
}

// Tag returns the language tag for l, or English for unknown locales.
func (l Locale) Tag() language.Tag {
	for i, loc := range supported {
		if loc == l {
			return supportedTags[i]
		}
	}
	return language.English
}

// For returns the UI text for l, falling back to the default locale.
func For(l Locale) Strings {
	if s, ok := table[l]; ok {
		return s
	}
	return table[Default]
}

// Success formats the congratulation notice shown after a code unlocks.
func Success(l Locale, msg string) string {
	return printer(l).Sprintf(keySuccess, msg)
}

// LinkLabel formats the link text offered for a slide explanation.
func LinkLabel(l Locale, slide int) string {
	return printer(l).Sprintf(keySlideLink, slide)
}

func printer(l Locale) *message.Printer {
	return message.NewPrinter(l.Tag(), message.Catalog(messages))
}

// ParseLocale matches a BCP 47 tag such as "ca-ES" or "en" to a supported locale.
func ParseLocale(value string) (Locale, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("empty locale")
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", value, err)
	}
	_, idx, conf := tagMatcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("unsupported locale %q", value)
	}
	return supported[idx], nil
}

// FromRequest resolves the locale requested by r through the lang query
// parameter or the Accept-Language header. The bool is false when the
// request expressed no usable preference.
func FromRequest(r *http.Request) (Locale, bool) {
	if r == nil {
		return Default, false
	}
	if v := strings.TrimSpace(r.URL.Query().Get(LangParam)); v != "" {
		if loc, err := ParseLocale(v); err == nil {
			return loc, true
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, idx, conf := tagMatcher.Match(tags...)
			if conf != language.No {
				return supported[idx], true
			}
		}
	}
	return Default, false
}
