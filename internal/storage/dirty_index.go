package storage

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/mmo-game/internal/vec"
	"github.com/dgraph-io/badger/v3"
)

// DirtyIndex is a badger-backed side table recording when each chunk
// was last flushed to its flat file. It is not the source of truth —
// WorldSave's chunk files are — but lets an operator or the debug API
// answer "what was saved, and when" without scanning the chunk
// directory tree, following the teacher's badger open/close lifecycle.
type DirtyIndex struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool
}

// OpenDirtyIndex opens (or creates) the badger database at dbPath.
func OpenDirtyIndex(dbPath string) (*DirtyIndex, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open dirty index: %w", err)
	}
	return &DirtyIndex{db: db, isReady: true}, nil
}

// Close closes the underlying badger database.
func (di *DirtyIndex) Close() error {
	di.mutex.Lock()
	defer di.mutex.Unlock()
	if !di.isReady {
		return nil
	}
	di.isReady = false
	return di.db.Close()
}

func chunkKey(pos vec.ChunkPos) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d", pos.X, pos.Z))
}

// MarkSaved records the unix-nano timestamp of a successful chunk flush.
func (di *DirtyIndex) MarkSaved(pos vec.ChunkPos) error {
	di.mutex.RLock()
	defer di.mutex.RUnlock()
	if !di.isReady {
		return fmt.Errorf("dirty index not ready")
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))

	return di.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(pos), buf[:])
	})
}

// LastSaved returns the last recorded save time for a chunk, or false
// if it has never been flushed through this index.
func (di *DirtyIndex) LastSaved(pos vec.ChunkPos) (time.Time, bool, error) {
	di.mutex.RLock()
	defer di.mutex.RUnlock()
	if !di.isReady {
		return time.Time{}, false, fmt.Errorf("dirty index not ready")
	}

	var nanos int64
	err := di.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(pos))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt dirty index entry for %v", pos)
			}
			nanos = int64(binary.LittleEndian.Uint64(val))
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, nanos), true, nil
}

// Count reports how many chunks the index currently tracks.
func (di *DirtyIndex) Count() (int, error) {
	di.mutex.RLock()
	defer di.mutex.RUnlock()
	if !di.isReady {
		return 0, fmt.Errorf("dirty index not ready")
	}

	count := 0
	err := di.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte("chunk:")); it.ValidForPrefix([]byte("chunk:")); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
