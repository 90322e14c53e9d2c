package user

// siblingLink is one stored direction of the sibling relation:
// UserID lists SiblingID among its siblings.
type siblingLink struct {
	UserID    int
	SiblingID int
}

// assemble expands every user in users using only the rows passed in.
// users must be ordered by id; the output keeps that order and so do the
// nested children. Links referring to unknown users are skipped.
func assemble(users []User, links []siblingLink) []Record {
	byID := make(map[int]int, len(users))
	records := make([]Record, len(users))
	for i, u := range users {
		byID[u.ID] = i
		records[i] = Record{
			User:      u,
			Children:  []Relative{},
			Siblings:  []Relative{},
			SiblingOf: []Relative{},
		}
	}

	for i, u := range users {
		if u.FatherID != nil {
			if j, ok := byID[*u.FatherID]; ok {
				records[i].Father = toParent(users[j])
				records[j].Children = append(records[j].Children, toRelative(u))
			}
		}
		if u.MotherID != nil {
			if j, ok := byID[*u.MotherID]; ok {
				records[i].Mother = toParent(users[j])
				// a user listed as both father and mother of the same child
				// still shows that child once
				if u.FatherID == nil || *u.FatherID != *u.MotherID {
					records[j].Children = append(records[j].Children, toRelative(u))
				}
			}
		}
	}

	for _, l := range links {
		from, ok := byID[l.UserID]
		if !ok {
			continue
		}
		to, ok := byID[l.SiblingID]
		if !ok {
			continue
		}
		records[from].Siblings = append(records[from].Siblings, toRelative(users[to]))
		records[to].SiblingOf = append(records[to].SiblingOf, toRelative(users[from]))
	}

	return records
}
