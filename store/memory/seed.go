package memory

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/satheeshds/invoicer/models"
)

//go:embed seed/*.json
var seedFiles embed.FS

// SeedData is the flat mock dataset loaded at startup.
type SeedData struct {
	Clients  []models.Client  `json:"clients"`
	Invoices []models.Invoice `json:"invoices"`
	Todos    []models.Todo    `json:"todos"`
}

// LoadSeed reads mock data from path, or the embedded dataset when path is
// empty.
func LoadSeed(path string) (SeedData, error) {
	var (
		raw []byte
		err error
	)
	if path == "" {
		raw, err = seedFiles.ReadFile("seed/seed.json")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return SeedData{}, fmt.Errorf("reading seed data: %w", err)
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("decoding seed data: %w", err)
	}
	return data, nil
}

// Seed replaces the store contents with data. Invoice totals are recomputed
// so seeded records satisfy the same invariants as created ones.
func (s *Store) Seed(data SeedData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = append([]models.Client(nil), data.Clients...)
	s.invoices = s.invoices[:0]
	for _, inv := range data.Invoices {
		inv = cloneInvoice(inv)
		inv.ApplyTotals()
		s.invoices = append(s.invoices, inv)
	}
	s.todos = s.todos[:0]
	for _, t := range data.Todos {
		s.todos = append(s.todos, cloneTodo(t))
	}
}
