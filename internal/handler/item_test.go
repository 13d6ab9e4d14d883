package handler

import (
	"encoding/json"
	"testing"
)

// The edit endpoint takes "listId" while delete takes "currentListId";
// clients send exactly these shapes.
func TestItemRequestFieldNames(t *testing.T) {
	var edit editItemRequest
	body := `{"listId": 7, "oldItem": {"id": 3, "name": "Milk", "category": "dairy", "quantity": 1},
	          "newItem": {"id": 3, "name": "Milk", "category": "dairy", "quantity": 2}}`
	if err := json.Unmarshal([]byte(body), &edit); err != nil {
		t.Fatalf("decode edit request: %v", err)
	}
	if edit.ListID != 7 {
		t.Errorf("ListID = %d, want 7", edit.ListID)
	}
	if edit.OldItem.Name != "Milk" || edit.NewItem.Quantity != 2 {
		t.Errorf("items = %+v / %+v, want Milk with new quantity 2", edit.OldItem, edit.NewItem)
	}

	var del deleteItemRequest
	if err := json.Unmarshal([]byte(`{"currentListId": 7, "itemId": 3}`), &del); err != nil {
		t.Fatalf("decode delete request: %v", err)
	}
	if del.CurrentListID != 7 || del.ItemID != 3 {
		t.Errorf("delete request = %+v, want list 7 item 3", del)
	}
}
