package models

type Widget string

const (
	WidgetSelect   Widget = "select"
	WidgetDatetime Widget = "datetime"
	WidgetCheckbox Widget = "checkbox"
	WidgetNumber   Widget = "number"
	WidgetTextarea Widget = "textarea"
	WidgetText     Widget = "text"
	WidgetAuto     Widget = "auto"
)

const AutoGeneratedUUID = "Auto-generated (UUID)"

// FieldSpec describes how one column is rendered in the record editor.
type FieldSpec struct {
	Column      string     `json:"column"`
	Label       string     `json:"label"`
	Widget      Widget     `json:"widget"`
	ReadOnly    bool       `json:"read_only"`
	Value       string     `json:"value"`
	Checked     bool       `json:"checked,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Nullable    bool       `json:"nullable"`
	Options     []FkOption `json:"options,omitempty"`
}

// EditorView is the open record editor of a workspace.
type EditorView struct {
	Panel    string               `json:"panel"`
	Table    string               `json:"table"`
	IsNew    bool                 `json:"is_new"`
	RowIndex int                  `json:"row_index"`
	Fields   []FieldSpec          `json:"fields"`
	Options  map[string]OptionSet `json:"options,omitempty"`
	Error    string               `json:"error,omitempty"`
}

type WorkspaceView struct {
	ID     string      `json:"id"`
	Left   GridView    `json:"left"`
	Right  GridView    `json:"right"`
	Editor *EditorView `json:"editor,omitempty"`
}
