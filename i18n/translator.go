package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional values to embed in the message (for example,
// "min" or "key"); placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalog = map[string]map[string]string{
	"en": {
		"invalid_type":   "invalid type",
		"required":       "required",
		"too_short":      "must have at least {min} items or characters",
		"too_long":       "must have at most {max} items or characters",
		"too_small":      "must be at least {min}",
		"too_big":        "must be at most {max}",
		"pattern":        "does not match the expected pattern",
		"invalid_enum":   "must be one of {allowed}",
		"invalid_format": "invalid format",
		"uniqueness":     "duplicate value {key}",
		"business_rule":  "violates a business rule",
		"conflict":       "conflicts with another value",
		"unknown":        "unknown error",
	},
	"ja": {
		"invalid_type":   "型が不正です",
		"required":       "必須項目です",
		"too_short":      "{min} 以上必要です",
		"too_long":       "{max} 以下にしてください",
		"too_small":      "{min} 以上にしてください",
		"too_big":        "{max} 以下にしてください",
		"pattern":        "形式が一致しません",
		"invalid_enum":   "{allowed} のいずれかを指定してください",
		"invalid_format": "形式が不正です",
		"uniqueness":     "値 {key} が重複しています",
		"business_rule":  "業務ルールに違反しています",
		"conflict":       "他の値と矛盾しています",
		"unknown":        "不明なエラー",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalog[t.lang][code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalog[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
