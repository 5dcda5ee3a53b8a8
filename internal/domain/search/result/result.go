package result

// DefaultCapacity is the number of slots in a result list.
const DefaultCapacity = 5

// Record is one renderable search hit. Every field is defined; absent
// provider fields are empty strings.
type Record struct {
	Title        string
	PublishDate  string
	ThumbnailURL string
	Description  string
	VideoID      string
	ChannelTitle string
}

// Placeholder is the record shown in unfilled slots.
var Placeholder = Record{}

// IsPlaceholder reports whether r carries no data.
func (r Record) IsPlaceholder() bool { return r == Placeholder }

// List is a fixed-capacity ordered sequence of records.
type List struct {
	records []Record
	filled  int
}

// NewList returns a list of the given capacity holding records in order.
// Records beyond capacity are discarded; missing slots hold Placeholder.
func NewList(capacity int, records []Record) List {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	slots := make([]Record, capacity)
	n := copy(slots, records)
	return List{records: slots, filled: n}
}

// Empty returns a list of placeholders.
func Empty(capacity int) List {
	return NewList(capacity, nil)
}

// Records returns a copy of all slots, placeholders included.
func (l List) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// At returns the record in slot i.
func (l List) At(i int) Record {
	if i < 0 || i >= len(l.records) {
		return Placeholder
	}
	return l.records[i]
}

// Cap returns the number of slots.
func (l List) Cap() int { return len(l.records) }

// Filled returns how many slots came from the provider.
func (l List) Filled() int { return l.filled }

// Raw is an unparsed provider response body.
type Raw []byte
