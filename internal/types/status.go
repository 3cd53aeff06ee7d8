package types

// Status is a type for the lifecycle status of a resource row in the database.
// This is distinct from the business statuses (recurring, invoice, payment, ...)
// and is used to soft-delete and archive rows without losing history.
// Any changes to this type should be reflected in the database schema by running migrations
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}
