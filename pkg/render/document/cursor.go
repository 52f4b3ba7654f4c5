package document

// Cursor is a vertical write position on a page. It is a value: placing a
// block returns a new cursor and never changes the receiver.
type Cursor struct {
	Page int
	Y    float64
}

// Place reserves h points for a block. It returns the cursor at which the
// block starts, which is on a fresh page at the top margin when the block
// would cross the bottom margin.
func (c Cursor) Place(h float64) Cursor {
	if c.Y+h > Bottom {
		return c.Break()
	}
	return c
}

// Break returns the top of the next page.
func (c Cursor) Break() Cursor {
	return Cursor{Page: c.Page + 1, Y: Margin}
}

// Down returns the cursor moved dy points down the same page.
func (c Cursor) Down(dy float64) Cursor {
	return Cursor{Page: c.Page, Y: c.Y + dy}
}

// At returns the cursor moved to y on the same page.
func (c Cursor) At(y float64) Cursor {
	return Cursor{Page: c.Page, Y: y}
}
