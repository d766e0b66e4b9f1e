package models

// NoneLabel is the label of the single null choice offered for nullable
// foreign keys.
const NoneLabel = "-- None --"

type FkOption struct {
	Value Value  `json:"value"`
	Label string `json:"label"`
	None  bool   `json:"none,omitempty"`
}

// OptionSet is the choice list for one foreign key column. Empty is true when
// no real option could be loaded; Error carries the reason when loading failed.
type OptionSet struct {
	Table   string     `json:"table"`
	Column  string     `json:"column"`
	Options []FkOption `json:"options"`
	Empty   bool       `json:"empty"`
	Error   string     `json:"error,omitempty"`
}
