package domain

// Tab identifies a top-level reader view whose selection is persisted.
type Tab string

const (
	// TabChoose lists the available document sets.
	TabChoose Tab = "choose"

	// TabRead shows the current section.
	TabRead Tab = "read"

	// TabHistory lists recently visited positions.
	TabHistory Tab = "history"
)

// IsValid returns true if the tab is recognised.
func (t Tab) IsValid() bool {
	switch t {
	case TabChoose, TabRead, TabHistory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Tab) String() string {
	return string(t)
}
