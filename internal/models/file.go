package models

// FileRef identifies one attached file: the externally supplied id, the
// user-visible name, the declared type and the path the FileStore resolves.
type FileRef struct {
	ID   string
	Name string
	Type FileType
	Path string
}
