package question

// BattleQuestion is a multiple-choice question from the battle bank. The
// correct option index stays server-side until the answer reveal.
type BattleQuestion struct {
	ID          string   `json:"id"`
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"` // exactly 4
	Correct     int      `json:"correct"` // index into Options
	Subject     string   `json:"subject"`
	Explanation string   `json:"explanation"`
	Reference   string   `json:"reference,omitempty"`
}
