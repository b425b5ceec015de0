package persona

// Persona captures the per-session AI configuration edited in the sidebar
// modal. Profile is free text used verbatim as the prompt prefix.
type Persona struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
}

// Defaults applied when a session has no stored persona record.
const (
	DefaultName    = "미믹"
	DefaultProfile = "친절하고 도움이 되는 AI입니다."
)

// Default returns the persona used before the user customizes anything.
func Default() Persona {
	return Persona{Name: DefaultName, Profile: DefaultProfile}
}
