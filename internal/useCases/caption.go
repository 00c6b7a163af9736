package useCases

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/samber/lo"
)

const (
	DefaultCaptionLimit = 900
	ellipsis            = "..."
)

// TrimCaption ограничивает подпись maxLength символами (не байтами).
// Длинный текст обрезается до maxLength-3 символов и дополняется "...".
func TrimCaption(text string, maxLength int) string {
	kept, trimmed := cutCaption(text, maxLength)
	if !trimmed || maxLength <= len(ellipsis) {
		return kept
	}
	return kept + ellipsis
}

// TrimFormatted обрезает текст как TrimCaption. Разметка за точкой обреза
// отбрасывается, пересекающая её укорачивается; на "..." разметки нет.
func TrimFormatted(c domain.Caption, maxLength int) domain.Caption {
	kept, trimmed := cutCaption(c.Text, maxLength)
	if !trimmed {
		return c
	}

	out := domain.Caption{Text: TrimCaption(c.Text, maxLength)}
	if len(c.Entities) == 0 {
		return out
	}

	limit := len(utf16.Encode([]rune(kept)))
	out.Entities = lo.FilterMap(c.Entities, func(e domain.Entity, _ int) (domain.Entity, bool) {
		if e.Offset >= limit {
			return e, false
		}
		e.Length = min(e.Length, limit-e.Offset)
		return e, true
	})
	if len(out.Entities) == 0 {
		out.Entities = nil
	}
	return out
}

// cutCaption возвращает часть текста, которая остаётся перед "..."
func cutCaption(text string, maxLength int) (string, bool) {
	if text == "" || utf8.RuneCountInString(text) <= maxLength {
		return text, false
	}

	runes := []rune(text)
	if maxLength <= len(ellipsis) {
		return string(runes[:max(maxLength, 0)]), true
	}
	return string(runes[:maxLength-len(ellipsis)]), true
}
