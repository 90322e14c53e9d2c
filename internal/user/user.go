package user

// User maps to a row of the `users` table. Parents are stored as plain id
// references; children and siblings are derived at read time.
type User struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
	Age      *int    `json:"age"`
	Gender   *string `json:"gender"`
	FatherID *int    `json:"fatherId,omitempty"`
	MotherID *int    `json:"motherId,omitempty"`
}

// Parent is the nested shape used for `father` and `mother`.
type Parent struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Age   *int    `json:"age"`
	Phone *string `json:"phone"`
}

// Relative is the nested shape used for `children` and `siblings`.
type Relative struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Age    *int    `json:"age"`
	Phone  *string `json:"phone"`
	Gender *string `json:"gender"`
}

// Record is a user together with every relation a repository expands.
// Siblings and SiblingOf are the two directional halves of the sibling
// relation and are kept apart until the service merges them.
type Record struct {
	User      User
	Father    *Parent
	Mother    *Parent
	Children  []Relative
	Siblings  []Relative
	SiblingOf []Relative
}

// UserView is the response shape returned by every read endpoint.
type UserView struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Age      *int       `json:"age"`
	Phone    *string    `json:"phone"`
	Gender   *string    `json:"gender"`
	Father   *Parent    `json:"father"`
	Mother   *Parent    `json:"mother"`
	Children []Relative `json:"children"`
	Siblings []Relative `json:"siblings"`
}

// ParentRef is the embedded `mother` value some clients send instead of
// `motherId`. Only the id is used.
type ParentRef struct {
	ID *int `json:"id"`
}

// CreateUserInput is the body accepted by POST /users.
type CreateUserInput struct {
	Name        string     `json:"name"`
	Phone       *string    `json:"phone"`
	Age         *int       `json:"age"`
	Gender      *string    `json:"gender"`
	FatherID    *int       `json:"fatherId"`
	MotherID    *int       `json:"motherId"`
	Mother      *ParentRef `json:"mother"`
	SiblingsIDs []int      `json:"siblingsIds"`
}

func toParent(u User) *Parent {
	return &Parent{ID: u.ID, Name: u.Name, Age: u.Age, Phone: u.Phone}
}

func toRelative(u User) Relative {
	return Relative{ID: u.ID, Name: u.Name, Age: u.Age, Phone: u.Phone, Gender: u.Gender}
}
