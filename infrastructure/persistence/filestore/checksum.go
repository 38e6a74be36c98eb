package filestore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"mindcanvas/domain/core/aggregates"
)

// encode returns the persisted form of doc and its content hash.
// Selection state does not contribute to either.
func encode(doc *aggregates.CanvasDocument) ([]byte, string, error) {
	data, err := json.Marshal(doc.ForPersistence())
	if err != nil {
		return nil, "", err
	}
	return data, checksumBytes(data), nil
}

func checksumBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
