package models

// Listing is the file repository's view of the container. When the last
// fetch failed, Files is empty and Err holds the cause.
type Listing struct {
	Files []FileRecord
	Err   error
}

func (l Listing) Failed() bool { return l.Err != nil }

// MutationKind names the operation behind a Mutation.
type MutationKind int

const (
	MutationCreated MutationKind = iota + 1
	MutationDeleted
)

func (k MutationKind) String() string {
	switch k {
	case MutationCreated:
		return "created"
	case MutationDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Mutation tells the caller how a write affected the cached listing.
// Patched means the in-memory collection already reflects the change;
// Refetch means it may be stale and should be listed again.
type Mutation struct {
	Kind    MutationKind
	FileID  string
	Patched bool
	Refetch bool
}
