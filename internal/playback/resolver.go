// Pure position arithmetic over an immutable rundown snapshot. Everything in
// this file is stateless; the controller calls these on every tick.
package playback

import "github.com/CuelineHQ/cueline/internal/model"

// CumulativeStartOffset returns the sum of the durations of every item
// strictly before (folder, item) in document order. (0,0) maps to 0; a target
// past the last item maps to the total runtime.
func CumulativeStartOffset(doc model.Rundown, folder, item int) int {
	offset := 0
	for fi, f := range doc.Folders {
		if fi > folder {
			return offset
		}
		for ii, it := range f.Items {
			if fi == folder && ii >= item {
				return offset
			}
			offset += it.Duration
		}
	}
	return offset
}

// TotalRuntime returns the sum of all item durations in the document.
func TotalRuntime(doc model.Rundown) int {
	total := 0
	for _, f := range doc.Folders {
		for _, it := range f.Items {
			total += it.Duration
		}
	}
	return total
}

// ResolveCurrent walks the document in order accumulating durations and
// returns the position whose [start, start+duration) window contains elapsed.
// Zero-duration items have an empty window and can never be current, so they
// are skipped without stalling. Returns ok=false once elapsed is at or past
// the total runtime.
func ResolveCurrent(doc model.Rundown, elapsed int) (model.Position, bool) {
	start := 0
	for fi, f := range doc.Folders {
		for ii, it := range f.Items {
			end := start + it.Duration
			if elapsed >= start && elapsed < end {
				return model.Position{Folder: fi, Item: ii}, true
			}
			start = end
		}
	}
	return model.Position{}, false
}

// FirstPosition returns the first addressable item in the document, skipping
// empty leading folders. ok=false when every folder is empty.
func FirstPosition(doc model.Rundown) (model.Position, bool) {
	for fi, f := range doc.Folders {
		if len(f.Items) > 0 {
			return model.Position{Folder: fi, Item: 0}, true
		}
	}
	return model.Position{}, false
}

// NextPosition returns the position immediately after pos in document order,
// skipping empty folders. ok=false at the end of the document.
func NextPosition(doc model.Rundown, pos model.Position) (model.Position, bool) {
	if !ValidPosition(doc, pos) {
		return model.Position{}, false
	}
	if pos.Item+1 < len(doc.Folders[pos.Folder].Items) {
		return model.Position{Folder: pos.Folder, Item: pos.Item + 1}, true
	}
	for fi := pos.Folder + 1; fi < len(doc.Folders); fi++ {
		if len(doc.Folders[fi].Items) > 0 {
			return model.Position{Folder: fi, Item: 0}, true
		}
	}
	return model.Position{}, false
}

// ValidPosition reports whether pos addresses an existing item in doc.
func ValidPosition(doc model.Rundown, pos model.Position) bool {
	if pos.Folder < 0 || pos.Folder >= len(doc.Folders) {
		return false
	}
	return pos.Item >= 0 && pos.Item < len(doc.Folders[pos.Folder].Items)
}

// ItemAt returns the item addressed by pos, or nil when pos is invalid.
func ItemAt(doc model.Rundown, pos model.Position) *model.Item {
	if !ValidPosition(doc, pos) {
		return nil
	}
	return &doc.Folders[pos.Folder].Items[pos.Item]
}
