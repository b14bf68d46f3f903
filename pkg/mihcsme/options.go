// Package mihcsme parses MIHCSME metadata workbooks and synchronizes them
// with map annotations on an OMERO screen.
package mihcsme

// DefaultNamespace is the base annotation namespace used when Options
// leaves Namespace empty.
const DefaultNamespace = "MIHCSME"

// Options configures upload and download behavior.
type Options struct {
	// Namespace is the base annotation namespace. Sheet and group names
	// are appended to it, e.g. "MIHCSME/StudyInformation/Study".
	Namespace string
	// Replace deletes existing annotations under the namespace before
	// uploading. Without it repeated uploads accumulate duplicates, since
	// the annotation store never deduplicates.
	Replace bool
	// DryRun resolves plates and wells but performs no writes.
	DryRun bool
}

// DefaultOptions returns the default upload options.
func DefaultOptions() Options {
	return Options{Namespace: DefaultNamespace}
}

func (o Options) namespaceBase() string {
	if o.Namespace == "" {
		return DefaultNamespace
	}
	return o.Namespace
}
