package source

type (
	// FileID uniquely identifies a checked document within a FileSet.
	FileID uint32 // просто ID документа
	// FileFlags encodes metadata about a document.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the document was added from memory (test, stdin, request body).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	FileHadBOM
)

// File captures metadata and content for a single document.
// Content is kept exactly as supplied (except a stripped BOM) so that
// offsets reported to callers point into the original text.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Offsets *OffsetTable
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a document.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, в кодовых точках
}
