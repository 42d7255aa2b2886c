package models

import "time"

// Dataset is the full in-memory table loaded from the source file. It is
// immutable after construction, so concurrent readers need no locking.
// Distinct regions and categories are kept in first-seen order, matching
// the order the sidebar widgets list them in.
type Dataset struct {
	records    []Record
	regions    []string
	categories []string
	minDate    time.Time
	maxDate    time.Time
}

func NewDataset(records []Record) *Dataset {
	d := &Dataset{records: records}

	seenRegion := make(map[string]bool)
	seenCategory := make(map[string]bool)
	for i, r := range records {
		if !seenRegion[r.Region] {
			seenRegion[r.Region] = true
			d.regions = append(d.regions, r.Region)
		}
		if !seenCategory[r.Category] {
			seenCategory[r.Category] = true
			d.categories = append(d.categories, r.Category)
		}
		if i == 0 || r.OrderDate.Before(d.minDate) {
			d.minDate = r.OrderDate
		}
		if i == 0 || r.OrderDate.After(d.maxDate) {
			d.maxDate = r.OrderDate
		}
	}
	return d
}

// Records returns the underlying rows. Callers must treat the slice as
// read-only.
func (d *Dataset) Records() []Record { return d.records }

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) Regions() []string { return d.regions }

func (d *Dataset) Categories() []string { return d.categories }

// DateBounds returns the earliest and latest order dates in the dataset,
// both zero when the dataset is empty.
func (d *Dataset) DateBounds() (time.Time, time.Time) {
	return d.minDate, d.maxDate
}
