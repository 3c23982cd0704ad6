package categories

// DefaultCategories seeds an empty category list.
var DefaultCategories = []string{"Mouse", "Keyboard", "Headset", "Microphone", "Monitor"}

// Activity actions recorded for category changes.
const (
	ActionAdded   = "Category added"
	ActionRenamed = "Category renamed"
	ActionDeleted = "Category deleted"
)

// Form carries a category name submitted by the dashboard.
type Form struct {
	Name string `json:"name"`
}
