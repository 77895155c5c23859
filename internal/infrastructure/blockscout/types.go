package blockscout

import (
	"encoding/json"
	"strings"

	"coffee-change.backend/internal/domain/entities"
)

type transferPage struct {
	Items          []json.RawMessage          `json:"items"`
	NextPageParams map[string]json.RawMessage `json:"next_page_params"`
}

type transferItem struct {
	TransactionHash flexString `json:"transaction_hash"`
	Total           *struct {
		Value    flexString `json:"value"`
		Decimals flexString `json:"decimals"`
	} `json:"total"`
}

// records maps items to transfer records. An item that is not an object
// becomes an empty record so it is still counted and then skipped.
func (p *transferPage) records() []entities.TransferRecord {
	out := make([]entities.TransferRecord, 0, len(p.Items))
	for _, raw := range p.Items {
		var item transferItem
		if err := json.Unmarshal(raw, &item); err != nil {
			out = append(out, entities.TransferRecord{})
			continue
		}
		rec := entities.TransferRecord{TxHash: item.TransactionHash.value}
		if item.Total != nil {
			rec.Value = item.Total.Value.value
			rec.Decimals = item.Total.Decimals.value
		}
		out = append(out, rec)
	}
	return out
}

// flexString accepts a JSON string or number; anything else leaves it unset.
type flexString struct {
	value *string
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		f.value = &v
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		v := n.String()
		f.value = &v
	}
	return nil
}
