package source

const (
	// Separator is placed between the content and its description.
	// It renders as a horizontal rule in markdown hovers.
	Separator = "\n\n---\n\n"
	// DescriptionJoiner joins multiple description columns.
	DescriptionJoiner = "\n\n"
)

// Compose builds the stored text for an entry.
// value and description are expected to be trimmed already.
func Compose(value, description string) string {
	if description == "" {
		return value
	}
	return value + Separator + description
}
