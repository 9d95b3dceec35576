package port

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
	Matches(root, path string) bool
}

type FileInfo struct {
	Path    string
	RelPath string
	Ext     string
	ModTime int64
	Size    int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
