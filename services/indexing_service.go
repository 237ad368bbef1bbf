package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

// ReferenceIndexer keeps the vector store in sync with a directory of
// medical reference documents (.txt, .md, .pdf). Each file is chunked,
// embedded and upserted with its content hash so unchanged files are skipped
// on rescan.
type ReferenceIndexer struct {
	collection chromago.Collection
	embedder   Embedder
}

// NewReferenceIndexer creates an indexer over the reference collection.
func NewReferenceIndexer(collection chromago.Collection, embedder Embedder) *ReferenceIndexer {
	return &ReferenceIndexer{
		collection: collection,
		embedder:   embedder,
	}
}

// indexState holds the stored content hash of an indexed file.
type indexState struct {
	Hash string
}

// WatchDirectory re-indexes reference documents as they change on disk.
// Blocks until ctx is cancelled.
func (s *ReferenceIndexer) WatchDirectory(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isReferenceFile(event.Name) {
					continue
				}

				// Editors often write via a temp file plus rename, so Create
				// and Write are handled the same way.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: Reference modified/created: %s. Re-indexing...", event.Name)
					hash, err := hashFile(event.Name)
					if err != nil {
						log.Printf("WATCHER WARN: Could not hash file %s: %v", event.Name, err)
						continue
					}
					s.deleteChunksForFile(ctx, event.Name)
					if err := s.indexFile(ctx, event.Name, hash); err != nil {
						log.Printf("WATCHER ERROR: Failed to index %s: %v", event.Name, err)
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Printf("WATCHER: Reference removed/renamed: %s. Removing from index...", event.Name)
					if err := s.deleteChunksForFile(ctx, event.Name); err != nil {
						log.Printf("WATCHER ERROR: Failed to delete chunks for %s: %v", event.Name, err)
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching reference directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

// ScanAndIndexDirectory syncs the reference directory with the vector store:
// new and modified files are (re-)indexed, deleted files are removed.
func (s *ReferenceIndexer) ScanAndIndexDirectory(ctx context.Context, dirPath string) {
	log.Printf("INDEXER: Starting reference scan for: %s", dirPath)

	indexedFiles, err := s.currentIndexState(ctx)
	if err != nil {
		log.Printf("INDEXER ERROR: Could not get current index state: %v", err)
		return
	}
	log.Printf("INDEXER: Found %d reference files currently in the index.", len(indexedFiles))

	localFiles := make(map[string]bool)
	err = filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isReferenceFile(path) {
			return nil
		}
		localFiles[path] = true
		hash, err := hashFile(path)
		if err != nil {
			log.Printf("INDEXER WARN: Could not hash file %s: %v", path, err)
			return nil
		}

		if state, ok := indexedFiles[path]; ok {
			if state.Hash == hash {
				return nil // unchanged
			}
			log.Printf("INDEXER: Reference has changed: %s. Re-indexing...", path)
			if err := s.deleteChunksForFile(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete old version of %s: %v", path, err)
				return nil
			}
		}

		log.Printf("INDEXER: Indexing reference: %s", path)
		if err := s.indexFile(ctx, path, hash); err != nil {
			log.Printf("INDEXER ERROR: Failed to index %s: %v", path, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("INDEXER ERROR: Error walking the path %s: %v", dirPath, err)
	}

	for path := range indexedFiles {
		if !localFiles[path] {
			log.Printf("INDEXER: Reference deleted: %s. Removing from index...", path)
			if err := s.deleteChunksForFile(ctx, path); err != nil {
				log.Printf("INDEXER ERROR: Failed to delete chunks for %s: %v", path, err)
			}
		}
	}
	log.Println("INDEXER: Reference scan finished.")
}

// indexFile chunks a reference document, embeds each chunk, and stores them
// with source and hash metadata.
func (s *ReferenceIndexer) indexFile(ctx context.Context, path, hash string) error {
	content, err := ReadReferenceFile(path)
	if err != nil {
		return err
	}

	splitter := textsplitter.NewRecursiveCharacter(textsplitter.WithChunkSize(1000), textsplitter.WithChunkOverlap(100))
	chunks, err := splitter.SplitText(content)
	if err != nil {
		return err
	}
	log.Printf("INDEXER: Split %s into %d chunks.", path, len(chunks))

	for i, chunk := range chunks {
		embeddingVector, err := s.embedder.EmbedText(ctx, chunk)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d of %s: %w", i, path, err)
		}
		embedding := embeddings.NewEmbeddingFromFloat32(embeddingVector)
		metadata := chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source_file", path),
			chromago.NewStringAttribute("file_hash", hash),
			chromago.NewIntAttribute("chunk_num", int64(i)),
		)
		docID := chromago.DocumentID(fmt.Sprintf("%s-chunk%d", uuid.New().String(), i))
		err = s.collection.Add(ctx,
			chromago.WithIDs(docID),
			chromago.WithTexts(chunk),
			chromago.WithEmbeddings(embedding),
			chromago.WithMetadatas(metadata),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunk %d of %s to chromadb: %w", i, path, err)
		}
	}
	return nil
}

func (s *ReferenceIndexer) currentIndexState(ctx context.Context) (map[string]indexState, error) {
	state := make(map[string]indexState)
	results, err := s.collection.Get(ctx)
	if err != nil {
		return nil, err
	}
	for _, meta := range results.GetMetadatas() {
		if meta == nil {
			continue
		}
		jsonBytes, err := json.Marshal(meta)
		if err != nil {
			continue
		}
		var metaMap map[string]interface{}
		if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
			continue
		}
		path, ok := metaMap["source_file"].(string)
		if !ok {
			continue
		}
		if hash, ok := metaMap["file_hash"].(string); ok {
			if _, exists := state[path]; !exists {
				state[path] = indexState{Hash: hash}
			}
		}
	}
	return state, nil
}

func (s *ReferenceIndexer) deleteChunksForFile(ctx context.Context, path string) error {
	where := chromago.EqString("source_file", path)
	return s.collection.Delete(ctx, chromago.WithWhereDelete(where))
}

func isReferenceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md", ".pdf":
		return true
	default:
		return false
	}
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
