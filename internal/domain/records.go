package domain

import "sort"

// Reshaping helpers shared by the order, receipt and dashboard flows.
// They work on raw Records so a single code path serves every table.

// FilterByEvent keeps the records whose Evento link field references
// eventID. An empty eventID keeps everything.
func FilterByEvent(records []Record, eventID string) []Record {
	if eventID == "" {
		return records
	}
	filtered := make([]Record, 0, len(records))
	for _, r := range records {
		if r.HasLink(FieldEvent, eventID) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// NameIndex maps record id to display name for a table. Records without a
// Nome fall back to Email, then to the id itself.
func NameIndex(records []Record) map[string]string {
	index := make(map[string]string, len(records))
	for _, r := range records {
		name := r.String(FieldName)
		if name == "" {
			name = r.String(FieldEmail)
		}
		if name == "" {
			name = r.ID()
		}
		index[r.ID()] = name
	}
	return index
}

// DisplayName resolves a link field to a display name: the first referenced
// id is looked up in names, and passes through unresolved when the map does
// not know it.
func DisplayName(r Record, field string, names map[string]string) string {
	id := r.FirstLink(field)
	if id == "" {
		return ""
	}
	if name, ok := names[id]; ok {
		return name
	}
	return id
}

// ResolveUnitPrice scans the price table for the first record linking the
// given menu item, customer type and event, and returns its unit price.
// A return of 0 means no price is configured for the combination; callers
// must refuse to create an order in that case.
func ResolveUnitPrice(prices []Record, menuItemID, customerTypeID, eventID string) float64 {
	for _, p := range prices {
		if !p.HasLink(FieldMenuItem, menuItemID) {
			continue
		}
		if !p.HasLink(FieldCustomerType, customerTypeID) {
			continue
		}
		if eventID != "" && !p.HasLink(FieldEvent, eventID) {
			continue
		}
		return UnitPriceOf(p)
	}
	return 0
}

// priceFields are the column names the base has used for the unit price
// over time; the first one present wins.
var priceFields = []string{"Preço (€)", "Preco", "Preço"}

// UnitPriceOf extracts the unit price from a Preços record.
func UnitPriceOf(p Record) float64 {
	for _, field := range priceFields {
		if _, ok := p[field]; ok {
			return p.Number(field)
		}
	}
	return 0
}

// GroupTotal is one aggregated slice of order value.
type GroupTotal struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AggregateValueByGroup sums order Valor by the first-linked id of
// groupField and attaches display names from the owning table. The result
// is sorted by name so dashboard output is stable between reloads.
func AggregateValueByGroup(orders []Record, groupField string, names map[string]string) []GroupTotal {
	sums := make(map[string]float64)
	for _, o := range orders {
		key := o.FirstLink(groupField)
		if key == "" {
			continue
		}
		sums[key] += o.Number(FieldValue)
	}

	totals := make([]GroupTotal, 0, len(sums))
	for id, value := range sums {
		name := id
		if n, ok := names[id]; ok {
			name = n
		}
		totals = append(totals, GroupTotal{ID: id, Name: name, Value: value})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Name < totals[j].Name })
	return totals
}
