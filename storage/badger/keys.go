package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/dredge/core"
)

// Key prefixes for different data types
const (
	documentPrefix     = "docrec"
	documentTypePrefix = "doctyp"
)

// makeDocumentKey generates a key for a document by id.
func makeDocumentKey(id core.ID) []byte {
	prefix := documentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// BigEndian so lexicographic iteration follows id order
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeDocumentTypeKey generates a composite key for the file-type index.
// Format: prefix:fileType:id
func makeDocumentTypeKey(fileType string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:", documentTypePrefix, fileType)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentTypeKey generates the iteration prefix for a file type.
func makePartialDocumentTypeKey(fileType string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentTypePrefix, fileType))
}
