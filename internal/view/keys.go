package view

// Key is a keystroke name as the terminal layer reports it ("enter", "esc", "a", ...).
type Key string

const (
	KeyEnter       Key = "enter"
	KeyNumpadEnter Key = "kp_enter"
	KeyEscape      Key = "esc"
)

// IsCommit reports whether k commits an input.
func (k Key) IsCommit() bool {
	return k == KeyEnter || k == KeyNumpadEnter
}

// IsCancel reports whether k discards an input.
func (k Key) IsCancel() bool {
	return k == KeyEscape
}
