package domain

// Kind names an entity type. It appears in errors, events and span attributes.
type Kind string

const (
	KindFranchise Kind = "franchise"
	KindBranch    Kind = "branch"
	KindProduct   Kind = "product"
)

// Franchise is the root organizational entity. It owns branches.
type Franchise struct {
	ID   int64
	Name string
}

// Branch is a location belonging to exactly one franchise.
// FranchiseID is fixed at creation.
type Branch struct {
	ID          int64
	FranchiseID int64
	Name        string
}

// Product is a stocked item belonging to exactly one branch.
// BranchID is fixed at creation; Stock is never negative.
type Product struct {
	ID       int64
	BranchID int64
	Name     string
	Stock    int
}

// NewFranchise returns an unsaved franchise. The store assigns the ID.
func NewFranchise(name string) Franchise {
	return Franchise{Name: name}
}

// NewBranch returns an unsaved branch under the given franchise.
func NewBranch(franchiseID int64, name string) Branch {
	return Branch{FranchiseID: franchiseID, Name: name}
}

// NewProduct returns an unsaved product under the given branch.
func NewProduct(branchID int64, name string, stock int) Product {
	return Product{BranchID: branchID, Name: name, Stock: stock}
}
