package ports

// Transaction is a set of storage changes staged by a RepoManager. Commit
// applies them all, Discard drops them; calling Discard after Commit is a
// no-op.
type Transaction interface {
	Commit() error
	Discard()
}
