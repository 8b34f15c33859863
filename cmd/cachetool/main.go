// Command cachetool inspects the persisted match cache envelope inside
// a Matinee data directory. Useful for checking what enrichment has
// resolved without starting the server.
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/matineeapp/matinee-server/internal/enrich"
	"github.com/matineeapp/matinee-server/internal/store"
)

// envelope mirrors the persisted match cache layout.
type envelope struct {
	Version   int                      `json:"version"`
	Timestamp int64                    `json:"timestamp"`
	Data      map[string]*enrich.Match `json:"data"`
}

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/matinee/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Matinee Cache Inspection ===")
	fmt.Println()

	printInstance(db)
	printMatchCache(db)
}

func printInstance(db *badger.DB) {
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("server:instance"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var instance store.Instance
			if err := json.Unmarshal(val, &instance); err != nil {
				return err
			}
			fmt.Printf("Instance: %s\n", instance.Name)
			fmt.Printf("  ID: %s\n", instance.ID)
			fmt.Printf("  Created: %s\n", instance.CreatedAt.Format(time.RFC3339))
			fmt.Println()
			return nil
		})
	})
	if err != nil {
		fmt.Printf("Instance: not found (%v)\n\n", err)
	}
}

func printMatchCache(db *badger.DB) {
	var raw []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("blob:match-cache"))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		fmt.Printf("Match cache: no envelope (%v)\n", err)
		return
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Fatalf("Failed to decode match cache envelope: %v", err)
	}

	flushed := time.UnixMilli(env.Timestamp)
	matched := 0
	misses := 0
	for _, m := range env.Data {
		if m != nil {
			matched++
		} else {
			misses++
		}
	}

	fmt.Println("Match cache envelope:")
	fmt.Printf("  Version: %d\n", env.Version)
	fmt.Printf("  Flushed: %s (%s ago)\n", flushed.Format(time.RFC3339), time.Since(flushed).Round(time.Second))
	fmt.Printf("  Entries: %d (%d matched, %d confirmed misses)\n", len(env.Data), matched, misses)
	fmt.Printf("  Size: %d bytes\n", len(raw))
	fmt.Println()

	keys := make([]string, 0, len(env.Data))
	for k := range env.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	shown := 0
	for _, k := range keys {
		if shown >= 10 {
			fmt.Printf("  ... and %d more entries\n", len(keys)-shown)
			break
		}
		m := env.Data[k]
		if m == nil {
			fmt.Printf("  %-40s (no match)\n", k)
		} else {
			fmt.Printf("  %-40s -> %s (tmdb %d, rating %.1f)\n", k, m.Title, m.ExternalID, m.Rating)
		}
		shown++
	}
}
