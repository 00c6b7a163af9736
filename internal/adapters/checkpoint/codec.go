package checkpoint

import "encoding/json"

// record: сохраняемое представление чекпоинта: {"id": <int>}
type record struct {
	ID *int64 `json:"id"`
}

func encode(id int64) ([]byte, error) {
	return json.Marshal(record{ID: &id})
}

// decode возвращает ok=false для любого содержимого, кроме {"id": <int>}
func decode(data []byte) (int64, bool) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil || r.ID == nil {
		return 0, false
	}
	return *r.ID, true
}
