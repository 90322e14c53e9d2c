package user

// MergeSiblings returns the union of both sibling directions keyed by id.
// Entries from siblings come first and the first occurrence of an id wins.
func MergeSiblings(siblings, siblingOf []Relative) []Relative {
	merged := make([]Relative, 0, len(siblings)+len(siblingOf))
	seen := make(map[int]struct{}, len(siblings)+len(siblingOf))
	for _, group := range [][]Relative{siblings, siblingOf} {
		for _, r := range group {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}
	return merged
}

// ToView shapes an expanded record for delivery.
func ToView(rec Record) UserView {
	children := rec.Children
	if children == nil {
		children = []Relative{}
	}
	return UserView{
		ID:       rec.User.ID,
		Name:     rec.User.Name,
		Age:      rec.User.Age,
		Phone:    rec.User.Phone,
		Gender:   rec.User.Gender,
		Father:   rec.Father,
		Mother:   rec.Mother,
		Children: children,
		Siblings: MergeSiblings(rec.Siblings, rec.SiblingOf),
	}
}

func ToViews(records []Record) []UserView {
	views := make([]UserView, 0, len(records))
	for _, rec := range records {
		views = append(views, ToView(rec))
	}
	return views
}
