package models

type OpType string

const (
	OpAdd    OpType = "add"
	OpUpdate OpType = "update"
	OpRemove OpType = "remove"
)

// BulkOperation is one tagged edit of a batch. Entry is required for add,
// Updates for update.
type BulkOperation struct {
	Type    OpType           `json:"type"`
	Date    string           `json:"date"`
	Entry   *ReadingDayEntry `json:"entry,omitempty"`
	Updates *EntryUpdate     `json:"updates,omitempty"`
}

func AddOp(date string, e ReadingDayEntry) BulkOperation {
	return BulkOperation{Type: OpAdd, Date: date, Entry: &e}
}

func UpdateOp(date string, u EntryUpdate) BulkOperation {
	return BulkOperation{Type: OpUpdate, Date: date, Updates: &u}
}

func RemoveOp(date string) BulkOperation {
	return BulkOperation{Type: OpRemove, Date: date}
}
