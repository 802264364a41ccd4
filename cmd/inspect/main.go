// Inspect dumps the tool server's session store as a table, for debugging a
// Badger directory without starting the server. The store is opened
// read-only so it can be inspected while the server runs.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

type metaRecord struct {
	ID        string `json:"id"`
	Document  string `json:"document"`
	Language  string `json:"language"`
	CreatedAt string `json:"created_at"`
}

type historyRecord struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	At      string `json:"at"`
}

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "session:", "Prefix to scan (session: or history:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Session", "Language", "At", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(value []byte) error {
				switch {
				case strings.HasPrefix(key, "session:"):
					var meta metaRecord
					if err := json.Unmarshal(value, &meta); err != nil {
						fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
						return nil
					}
					table.Append([]string{key, shortID(meta.ID), meta.Language, meta.CreatedAt, truncate(meta.Document)})
				case strings.HasPrefix(key, "history:"):
					var record historyRecord
					if err := json.Unmarshal(value, &record); err != nil {
						fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
						return nil
					}
					table.Append([]string{key, sessionOfHistoryKey(key), record.Role, record.At, truncate(record.Content)})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func sessionOfHistoryKey(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return ""
	}
	return shortID(parts[1])
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	if len(text) > 80 {
		return text[:80] + "..."
	}
	return text
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	return badger.Open(opts)
}
