package ui

import (
	"fmt"
	"io"
)

// FormatStatus возвращает иконку, цвет и текст для итога проверки или лечения.
func FormatStatus(status string) (icon, color, text string) {
	switch status {
	case "passed":
		return IconCheckmark, ColorGreen, "прошла"
	case "failed":
		return IconCross, ColorRed, "провалена"
	case "tolerated":
		return IconWarning, ColorYellow, "принята по допуску"
	case "healed":
		return IconHeal, ColorYellow, "селектор вылечен"
	case "original":
		return IconCheckmark, ColorGreen, "исходный селектор"
	default:
		return IconWarning, ColorYellow, status
	}
}

// PrintStatus печатает строку со статусом и сообщением.
func PrintStatus(w io.Writer, status, msg string) {
	icon, color, text := FormatStatus(status)
	fmt.Fprintf(w, "%s%s %s%s %s\n", color, icon, text, ColorReset, msg)
}

// PrintError печатает ошибку красным.
func PrintError(w io.Writer, msg string, err error) {
	fmt.Fprintf(w, ColorRed+IconCross+" %s:"+ColorReset+" %v\n", msg, err)
}

// PrintField печатает пару "имя: значение" серым.
func PrintField(w io.Writer, name, value string) {
	fmt.Fprintf(w, "  "+ColorGray+"%s:"+ColorReset+" %s\n", name, value)
}
