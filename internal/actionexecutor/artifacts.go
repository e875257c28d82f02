package actionexecutor

import (
	"encoding/json"

	"ghostqa/internal/browserdriver"
)

func inventoryJSON(inv browserdriver.PageInventory) ([]byte, error) {
	return json.MarshalIndent(inv, "", "  ")
}
