package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.etcd.io/bbolt"

	"bob/internal/domain"
)

var (
	bucketDocs       = []byte("docs")
	bucketPaths      = []byte("paths")
	bucketStructures = []byte("structures")
	bucketStats      = []byte("stats")
	bucketSymbols    = []byte("symbols")
	bucketDocSymbols = []byte("doc_symbols")
	keyStats         = []byte("corpus_stats")
)

// ErrNotFound is returned when a document or structure is missing.
var ErrNotFound = errors.New("not found")

type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{bucketDocs, bucketPaths, bucketStructures, bucketStats, bucketSymbols, bucketDocSymbols}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// DocID derives a stable document ID from a file path.
func DocID(path string) string {
	return strconv.FormatUint(xxhash.Sum64String(path), 16)
}

type docMeta struct {
	Path     string          `json:"path"`
	ModTime  int64           `json:"mod_time"`
	Lang     domain.Language `json:"lang"`
	Hash     uint64          `json:"hash"`
	Size     int64           `json:"size"`
	Complete bool            `json:"complete"`
}

func (m docMeta) document(id string) domain.Document {
	return domain.Document{
		ID:       id,
		Path:     m.Path,
		ModTime:  time.Unix(m.ModTime, 0),
		Lang:     m.Lang,
		Hash:     m.Hash,
		Size:     m.Size,
		Complete: m.Complete,
	}
}

// PutAnalysis stores a document, its structure and its symbol index in one
// transaction, replacing anything stored for the same document before.
func (s *BoltStore) PutAnalysis(doc domain.Document, structure domain.CodeStructure) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		meta := docMeta{
			Path:     doc.Path,
			ModTime:  doc.ModTime.Unix(),
			Lang:     doc.Lang,
			Hash:     doc.Hash,
			Size:     doc.Size,
			Complete: doc.Complete,
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketDocs).Put([]byte(doc.ID), data); err != nil {
			return err
		}
		if err := tx.Bucket(bucketPaths).Put([]byte(doc.Path), []byte(doc.ID)); err != nil {
			return err
		}

		structData, err := json.Marshal(structure)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketStructures).Put([]byte(doc.ID), structData); err != nil {
			return err
		}

		if err := deleteSymbols(tx, doc.ID); err != nil {
			return err
		}
		return putSymbols(tx, doc.ID, Symbols(doc.ID, structure))
	})
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		doc = meta.document(id)
		return nil
	})
	return doc, err
}

func (s *BoltStore) GetDocByPath(path string) (domain.Document, error) {
	var id string
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPaths).Get([]byte(path))
		if data == nil {
			return fmt.Errorf("document for %s: %w", path, ErrNotFound)
		}
		id = string(data)
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return s.GetDoc(id)
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDocs)
		return b.ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			docs = append(docs, meta.document(string(k)))
			return nil
		})
	})
	return docs, err
}

func (s *BoltStore) GetStructure(docID string) (domain.CodeStructure, error) {
	var structure domain.CodeStructure
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStructures).Get([]byte(docID))
		if data == nil {
			return fmt.Errorf("structure %s: %w", docID, ErrNotFound)
		}
		return json.Unmarshal(data, &structure)
	})
	return structure, err
}

// DeleteDoc removes a document with its structure and symbols.
func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket(bucketDocs)
		if data := docs.Get([]byte(id)); data != nil {
			var meta docMeta
			if err := json.Unmarshal(data, &meta); err == nil {
				if err := tx.Bucket(bucketPaths).Delete([]byte(meta.Path)); err != nil {
					return err
				}
			}
		}
		if err := tx.Bucket(bucketStructures).Delete([]byte(id)); err != nil {
			return err
		}
		if err := deleteSymbols(tx, id); err != nil {
			return err
		}
		return docs.Delete([]byte(id))
	})
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

func (s *BoltStore) UpdateStats(stats domain.Stats) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Symbols flattens a structure into index entries: classes, their methods,
// then the top-level function scan.
func Symbols(docID string, structure domain.CodeStructure) []domain.Symbol {
	var symbols []domain.Symbol
	add := func(kind, parent string, fn *domain.FunctionSignature, name string) {
		sym := domain.Symbol{
			Name:   name,
			Kind:   kind,
			Parent: parent,
			DocID:  docID,
			Lang:   structure.Language,
		}
		if fn != nil {
			sym.Parameters = fn.Parameters
			sym.ReturnType = fn.ReturnType
		}
		sym.ID = symbolID(docID, len(symbols), sym)
		symbols = append(symbols, sym)
	}

	for _, class := range structure.Classes {
		add("class", "", nil, class.Name)
		for i := range class.Methods {
			add("method", class.Name, &class.Methods[i], class.Methods[i].Name)
		}
	}
	for i := range structure.Functions {
		add("function", "", &structure.Functions[i], structure.Functions[i].Name)
	}
	return symbols
}

func symbolID(docID string, ordinal int, sym domain.Symbol) string {
	key := fmt.Sprintf("%s:%d:%s:%s:%s", docID, ordinal, sym.Kind, sym.Parent, sym.Name)
	return strconv.FormatUint(xxhash.Sum64String(key), 16)
}

func putSymbols(tx *bbolt.Tx, docID string, symbols []domain.Symbol) error {
	symbolBucket := tx.Bucket(bucketSymbols)

	symbolIDs := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		data, err := json.Marshal(sym)
		if err != nil {
			return err
		}
		if err := symbolBucket.Put([]byte(sym.ID), data); err != nil {
			return err
		}
		symbolIDs = append(symbolIDs, sym.ID)
	}

	idsData, err := json.Marshal(symbolIDs)
	if err != nil {
		return err
	}
	return tx.Bucket(bucketDocSymbols).Put([]byte(docID), idsData)
}

func deleteSymbols(tx *bbolt.Tx, docID string) error {
	docSymbolsBucket := tx.Bucket(bucketDocSymbols)
	data := docSymbolsBucket.Get([]byte(docID))
	if data == nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	symbolBucket := tx.Bucket(bucketSymbols)
	for _, id := range ids {
		if err := symbolBucket.Delete([]byte(id)); err != nil {
			return err
		}
	}
	return docSymbolsBucket.Delete([]byte(docID))
}

func (s *BoltStore) GetSymbolsByDoc(docID string) ([]domain.Symbol, error) {
	var symbols []domain.Symbol
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocSymbols).Get([]byte(docID))
		if data == nil {
			return nil
		}
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		symbolBucket := tx.Bucket(bucketSymbols)
		for _, id := range ids {
			symData := symbolBucket.Get([]byte(id))
			if symData != nil {
				var sym domain.Symbol
				if err := json.Unmarshal(symData, &sym); err == nil {
					symbols = append(symbols, sym)
				}
			}
		}
		return nil
	})
	return symbols, err
}

func (s *BoltStore) GetAllSymbols() ([]domain.Symbol, error) {
	var symbols []domain.Symbol
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSymbols)
		return b.ForEach(func(k, v []byte) error {
			var sym domain.Symbol
			if err := json.Unmarshal(v, &sym); err != nil {
				return nil
			}
			symbols = append(symbols, sym)
			return nil
		})
	})
	return symbols, err
}
