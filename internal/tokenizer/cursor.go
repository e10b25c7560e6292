package tokenizer

import (
	"unicode/utf8"
)

// Cursor представляет позицию в тексте предложения (в байтах)
type Cursor struct {
	Text string
	Off  int
}

// EOF проверяет, достигнут ли конец текста
func (c *Cursor) EOF() bool {
	return c.Off >= len(c.Text)
}

// Peek читает текущую руну, если есть, иначе возвращает utf8.RuneError и 0
func (c *Cursor) Peek() (rune, int) {
	if c.EOF() {
		return utf8.RuneError, 0
	}
	b := c.Text[c.Off]
	if b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(c.Text[c.Off:])
}

// Bump перемещает курсор на одну руну вперед и возвращает её
func (c *Cursor) Bump() rune {
	r, n := c.Peek()
	c.Off += n
	return r
}

// Mark это метка, что бы быстро получать границы читаемого фрагмента
type Mark int

// Mark сохраняет текущую позицию курсора
func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

// From возвращает фрагмент текста от метки до текущей позиции
func (c *Cursor) From(m Mark) string {
	return c.Text[int(m):c.Off]
}

// Reset возвращает курсор назад к метке
func (c *Cursor) Reset(m Mark) {
	c.Off = int(m)
}
